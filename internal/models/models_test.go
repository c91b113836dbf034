// internal/models/models_test.go
package models

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	infos := Builtin()
	require.Len(t, infos, 6)

	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
		assert.NotEmpty(t, info.Name)
		assert.Positive(t, info.InputCostPer1K)
		assert.Positive(t, info.OutputCostPer1K)
		assert.Positive(t, info.ContextWindow)
	}
	assert.Equal(t, []string{"gpt-4", "claude-3-opus", "gemini-pro", "llama-3-70b", "mixtral-8x7b", "command-r"}, ids)

	// Builtin returns a copy each time.
	infos[0].Name = "changed"
	assert.Equal(t, "GPT-4 Turbo", Builtin()[0].Name)
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
		{"héllo", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), "EstimateTokens(%q)", tt.text)
	}
}

func TestCost(t *testing.T) {
	info := ModelInfo{InputCostPer1K: 0.01, OutputCostPer1K: 0.03}
	assert.InDelta(t, 0.01+0.06, Cost(1000, 2000, info), 1e-12)
	assert.Zero(t, Cost(0, 0, info))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Builtin(), WithDelayScale(0))

	assert.Equal(t, 6, r.Count())
	assert.Equal(t, "gpt-4", r.IDs()[0])

	info, ok := r.Info("command-r")
	require.True(t, ok)
	assert.Equal(t, ProviderCohere, info.Provider)

	_, ok = r.Info("nope")
	assert.False(t, ok)
	assert.Nil(t, r.Get("nope"))

	google := r.ByProvider(ProviderGoogle)
	require.Len(t, google, 1)
	assert.Equal(t, "gemini-pro", google[0].ID)
	assert.Empty(t, r.ByProvider(ProviderAzureOpenAI))

	cohere := r.ByProvider("cohere")
	require.Len(t, cohere, 1)
	assert.Equal(t, "command-r", cohere[0].ID)

	found, missing := r.Resolve([]string{"command-r", "ghost", "gpt-4"})
	require.Len(t, found, 2)
	assert.Equal(t, "command-r", found[0].ID)
	assert.Equal(t, "gpt-4", found[1].ID)
	assert.Equal(t, []string{"ghost"}, missing)
}

func TestRegistryAddReplacesInPlace(t *testing.T) {
	r := NewRegistry(Builtin()[:2], WithDelayScale(0))
	replacement := NewSimulated(ModelInfo{ID: "gpt-4", Name: "Replaced", Provider: ProviderOpenAI})
	r.Add(replacement)

	assert.Equal(t, []string{"gpt-4", "claude-3-opus"}, r.IDs())
	info, _ := r.Info("gpt-4")
	assert.Equal(t, "Replaced", info.Name)
}

func TestSimulatedResponseDeterministic(t *testing.T) {
	info := Builtin()[0]
	a := SimulatedResponse("Explain quantum computing in simple terms", info)
	b := SimulatedResponse("Explain quantum computing in simple terms", info)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "GPT-4 Turbo")
	assert.Contains(t, a, "helpful, harmless, and honest")

	paragraphs := strings.Count(a, fillerParagraph)
	assert.GreaterOrEqual(t, paragraphs, 1)
	assert.LessOrEqual(t, paragraphs, 3)
}

func TestSimulatedResponseProviderFlavor(t *testing.T) {
	claude := Builtin()[1]
	assert.Contains(t, SimulatedResponse("hi", claude), "constitutional AI")

	meta := Builtin()[3]
	assert.Contains(t, SimulatedResponse("hi", meta), "accurate and helpful information")
}

func TestSimulatedResponseQuotesPromptVerbatim(t *testing.T) {
	got := SimulatedResponse("say \"hi\"\nplease", Builtin()[0])
	assert.Contains(t, got, "your query about \"say \"hi\"\nplease\".")
	assert.NotContains(t, got, `\n`)
	assert.NotContains(t, got, `\"`)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 20))
	assert.Equal(t, "abcde...", clip("abcdefgh", 5))
}

func TestSimulatedDelayRanges(t *testing.T) {
	tests := []struct {
		provider Provider
		min, max time.Duration
	}{
		{ProviderOpenAI, 1300 * time.Millisecond, 2800 * time.Millisecond},
		{ProviderAnthropic, 1700 * time.Millisecond, 3500 * time.Millisecond},
		{ProviderMistral, 900 * time.Millisecond, 2200 * time.Millisecond},
		{ProviderHuggingFace, 1500 * time.Millisecond, 3000 * time.Millisecond},
	}
	for _, tt := range tests {
		m := NewSimulated(ModelInfo{ID: "x", Provider: tt.provider}, WithSeed(42))
		for range 50 {
			d := m.Delay()
			assert.GreaterOrEqual(t, d, tt.min, "provider %s", tt.provider)
			assert.Less(t, d, tt.max, "provider %s", tt.provider)
		}
	}

	scaled := NewSimulated(ModelInfo{ID: "x", Provider: ProviderOpenAI}, WithDelayScale(0))
	assert.Zero(t, scaled.Delay())
}

func TestSimulatedSend(t *testing.T) {
	info := Builtin()[2]
	m := NewSimulated(info, WithDelayScale(0))

	var sb strings.Builder
	done := false
	for chunk := range m.Send(context.Background(), "What is Go?") {
		require.NoError(t, chunk.Error)
		sb.WriteString(chunk.Text)
		if chunk.Done {
			done = true
		}
	}

	assert.True(t, done)
	assert.Equal(t, SimulatedResponse("What is Go?", info), sb.String())
	assert.Equal(t, StatusIdle, m.Status())
}

func TestSimulatedSendCancelled(t *testing.T) {
	m := NewSimulated(Builtin()[1], WithDelayScale(10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for chunk := range m.Send(ctx, "slow") {
		if chunk.Error != nil {
			gotErr = chunk.Error
		}
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestSimulatedSendTimeout(t *testing.T) {
	m := NewSimulated(Builtin()[1], WithDelayScale(10))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var last Chunk
	for chunk := range m.Send(ctx, "slow") {
		last = chunk
	}
	assert.True(t, last.IsTimeout)
	assert.Equal(t, StatusTimeout, m.Status())
}

func TestSimulatedStop(t *testing.T) {
	m := NewSimulated(Builtin()[1], WithDelayScale(10))
	ch := m.Send(context.Background(), "stop me")
	m.Stop()

	var gotErr error
	for chunk := range ch {
		if chunk.Error != nil {
			gotErr = chunk.Error
		}
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestModelStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "responding", StatusResponding.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
	assert.Equal(t, "unknown", ModelStatus(99).String())
}
