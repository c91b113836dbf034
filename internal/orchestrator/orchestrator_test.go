// internal/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"modelarena/internal/models"
)

// MockModel implements the Model interface for testing
type MockModel struct {
	info         models.ModelInfo
	status       models.ModelStatus
	sendFunc     func(ctx context.Context, prompt string) <-chan models.Chunk
	statusMu     sync.Mutex
	statusCalled []models.ModelStatus
}

func NewMockModel(id string) *MockModel {
	return &MockModel{
		info: models.ModelInfo{
			ID:              id,
			Name:            "Mock " + id,
			Provider:        models.ProviderOpenAI,
			InputCostPer1K:  0.01,
			OutputCostPer1K: 0.03,
		},
		status: models.StatusIdle,
	}
}

func (m *MockModel) Info() models.ModelInfo {
	return m.info
}

func (m *MockModel) Send(ctx context.Context, prompt string) <-chan models.Chunk {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, prompt)
	}
	// Default: return a simple response
	ch := make(chan models.Chunk, 2)
	go func() {
		ch <- models.Chunk{Text: "Mock response from " + m.info.ID}
		ch <- models.Chunk{Done: true}
		close(ch)
	}()
	return ch
}

func (m *MockModel) Stop() {}

func (m *MockModel) Status() models.ModelStatus {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status
}

func (m *MockModel) SetStatus(status models.ModelStatus) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.status = status
	m.statusCalled = append(m.statusCalled, status)
}

// MockRegistry is a test-only registry that allows direct model injection
type MockRegistry struct {
	models map[string]models.Model
}

func NewMockRegistry(ms ...*MockModel) *MockRegistry {
	r := &MockRegistry{models: make(map[string]models.Model)}
	for _, m := range ms {
		r.models[m.info.ID] = m
	}
	return r
}

func (r *MockRegistry) Get(id string) models.Model {
	if m, ok := r.models[id]; ok {
		return m
	}
	return nil
}

func infosOf(ms ...*MockModel) []models.ModelInfo {
	out := make([]models.ModelInfo, len(ms))
	for i, m := range ms {
		out[i] = m.info
	}
	return out
}

// delayedSend answers with text after d.
func delayedSend(d time.Duration, text string) func(ctx context.Context, prompt string) <-chan models.Chunk {
	return func(ctx context.Context, prompt string) <-chan models.Chunk {
		ch := make(chan models.Chunk, 2)
		go func() {
			defer close(ch)
			select {
			case <-time.After(d):
				ch <- models.Chunk{Text: text}
				ch <- models.Chunk{Done: true}
			case <-ctx.Done():
				ch <- models.Chunk{Error: ctx.Err(), IsTimeout: errors.Is(ctx.Err(), context.DeadlineExceeded)}
			}
		}()
		return ch
	}
}

// --- Constructor Tests ---

func TestNew(t *testing.T) {
	timeout := 30 * time.Second
	orch := New(nil, timeout)

	if orch == nil {
		t.Fatal("New returned nil")
	}
	if orch.timeout != timeout {
		t.Errorf("Expected timeout %v, got %v", timeout, orch.timeout)
	}
	if orch.logger == nil {
		t.Error("Expected default logger")
	}
}

// --- Aggregate Tests ---

func TestAggregate_NoModels(t *testing.T) {
	orch := New(nil, 0)

	_, err := orch.Aggregate(context.Background(), "hi", nil)
	if !errors.Is(err, ErrNoModels) {
		t.Errorf("Expected ErrNoModels, got %v", err)
	}
}

func TestAggregate_PreservesInputOrder(t *testing.T) {
	a, b, c := NewMockModel("a"), NewMockModel("b"), NewMockModel("c")
	// The first model finishes last.
	a.sendFunc = delayedSend(60*time.Millisecond, "slow a")
	b.sendFunc = delayedSend(5*time.Millisecond, "fast b")
	c.sendFunc = delayedSend(20*time.Millisecond, "mid c")

	orch := New(NewMockRegistry(a, b, c), 0)

	results, err := orch.Aggregate(context.Background(), "order please", infosOf(a, b, c))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].ModelID != want {
			t.Errorf("results[%d].ModelID = %s, want %s", i, results[i].ModelID, want)
		}
	}
	if results[0].Content != "slow a" {
		t.Errorf("Unexpected content %q", results[0].Content)
	}
}

func TestAggregate_RunsConcurrently(t *testing.T) {
	var ms []*MockModel
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		m := NewMockModel(id)
		m.sendFunc = delayedSend(100*time.Millisecond, "done")
		ms = append(ms, m)
	}

	orch := New(NewMockRegistry(ms...), 0)

	start := time.Now()
	if _, err := orch.Aggregate(context.Background(), "parallel", infosOf(ms...)); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	elapsed := time.Since(start)

	// Sequential would take 400ms.
	if elapsed > 300*time.Millisecond {
		t.Errorf("Aggregate took %v, expected roughly the max single delay", elapsed)
	}
}

func TestAggregate_TokensAndCost(t *testing.T) {
	m := NewMockModel("priced")
	m.sendFunc = delayedSend(0, "abcdefghij") // 10 chars -> 3 tokens

	orch := New(NewMockRegistry(m), 0)
	prompt := "12345678" // 8 chars -> 2 tokens

	results, err := orch.Aggregate(context.Background(), prompt, infosOf(m))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	r := results[0]

	if r.PromptTokens != 2 || r.ResponseTokens != 3 {
		t.Errorf("Expected 2/3 tokens, got %d/%d", r.PromptTokens, r.ResponseTokens)
	}
	if r.TokenCount != 5 {
		t.Errorf("Expected TokenCount 5, got %d", r.TokenCount)
	}

	want := (2.0/1000)*0.01 + (3.0/1000)*0.03
	if math.Abs(r.Cost-want) > 1e-12 {
		t.Errorf("Expected cost %v, got %v", want, r.Cost)
	}
	if r.Latency < 0 {
		t.Errorf("Latency should be non-negative, got %v", r.Latency)
	}
}

func TestAggregate_SimulatedFallback(t *testing.T) {
	// Descriptors with no registered backend are simulated on the fly.
	orch := New(nil, 0).WithSimOptions(models.WithDelayScale(0))
	infos := models.Builtin()

	results, err := orch.Aggregate(context.Background(), "Tell me about Elo ratings", infos)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != len(infos) {
		t.Fatalf("Expected %d results, got %d", len(infos), len(results))
	}

	for i, r := range results {
		if r.ModelID != infos[i].ID {
			t.Errorf("results[%d] = %s, want %s", i, r.ModelID, infos[i].ID)
		}
		if r.TokenCount <= 0 || r.Cost < 0 {
			t.Errorf("%s: bad metrics tokens=%d cost=%v", r.ModelID, r.TokenCount, r.Cost)
		}
		want := float64(r.PromptTokens)/1000*infos[i].InputCostPer1K +
			float64(r.ResponseTokens)/1000*infos[i].OutputCostPer1K
		if math.Abs(r.Cost-want) > 1e-12 {
			t.Errorf("%s: cost %v, want %v", r.ModelID, r.Cost, want)
		}
		if r.Content != models.SimulatedResponse("Tell me about Elo ratings", infos[i]) {
			t.Errorf("%s: unexpected content", r.ModelID)
		}
	}
}

func TestAggregate_Timeout(t *testing.T) {
	fast := NewMockModel("fast")
	slow := NewMockModel("slow")
	slow.sendFunc = delayedSend(time.Second, "too late")

	orch := New(NewMockRegistry(fast, slow), 20*time.Millisecond)

	_, err := orch.Aggregate(context.Background(), "hurry", infosOf(fast, slow))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if slow.Status() != models.StatusTimeout {
		t.Errorf("Expected slow model status timeout, got %v", slow.Status())
	}
}

func TestAggregate_ContextCancelled(t *testing.T) {
	m := NewMockModel("m")
	m.sendFunc = delayedSend(time.Second, "never")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(NewMockRegistry(m), 0)
	_, err := orch.Aggregate(ctx, "cancelled", infosOf(m))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestAggregate_ModelError(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockModel("broken")
	m.sendFunc = func(ctx context.Context, prompt string) <-chan models.Chunk {
		ch := make(chan models.Chunk, 1)
		ch <- models.Chunk{Error: boom}
		close(ch)
		return ch
	}

	orch := New(NewMockRegistry(m), 0)
	_, err := orch.Aggregate(context.Background(), "x", infosOf(m))
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped boom, got %v", err)
	}
	if m.Status() != models.StatusError {
		t.Errorf("Expected status error, got %v", m.Status())
	}
}

func TestAggregate_ClosedWithoutOutput(t *testing.T) {
	m := NewMockModel("silent")
	m.sendFunc = func(ctx context.Context, prompt string) <-chan models.Chunk {
		ch := make(chan models.Chunk)
		close(ch)
		return ch
	}

	orch := New(NewMockRegistry(m), 0)
	_, err := orch.Aggregate(context.Background(), "x", infosOf(m))
	if !errors.Is(err, ErrNoOutput) {
		t.Errorf("Expected ErrNoOutput, got %v", err)
	}
}

func TestAggregate_ClosedWithContentCountsAsDone(t *testing.T) {
	m := NewMockModel("nodone")
	m.sendFunc = func(ctx context.Context, prompt string) <-chan models.Chunk {
		ch := make(chan models.Chunk, 1)
		ch <- models.Chunk{Text: "partial but fine"}
		close(ch)
		return ch
	}

	orch := New(NewMockRegistry(m), 0)
	results, err := orch.Aggregate(context.Background(), "x", infosOf(m))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if results[0].Content != "partial but fine" {
		t.Errorf("Unexpected content %q", results[0].Content)
	}
}

// --- Stream Tests ---

func TestStream_DeliversEveryModel(t *testing.T) {
	a, b := NewMockModel("a"), NewMockModel("b")
	a.sendFunc = delayedSend(30*time.Millisecond, "A")
	b.sendFunc = delayedSend(1*time.Millisecond, "B")

	orch := New(NewMockRegistry(a, b), 0)

	seen := map[int]string{}
	for resp := range orch.Stream(context.Background(), "go", infosOf(a, b)) {
		if resp.Error != nil {
			t.Fatalf("Unexpected error: %v", resp.Error)
		}
		seen[resp.Index] = resp.Result.ModelID
	}

	if seen[0] != "a" || seen[1] != "b" {
		t.Errorf("Unexpected stream results %v", seen)
	}
}

func TestStream_ReportsTimeoutPerModel(t *testing.T) {
	fast := NewMockModel("fast")
	slow := NewMockModel("slow")
	slow.sendFunc = delayedSend(time.Second, "late")

	orch := New(NewMockRegistry(fast, slow), 20*time.Millisecond)

	var okCount, timeoutCount int
	for resp := range orch.Stream(context.Background(), "go", infosOf(fast, slow)) {
		switch {
		case resp.IsTimeout:
			timeoutCount++
		case resp.Error == nil:
			okCount++
		}
	}

	if okCount != 1 || timeoutCount != 1 {
		t.Errorf("Expected 1 ok and 1 timeout, got %d and %d", okCount, timeoutCount)
	}
}

func TestStream_Empty(t *testing.T) {
	orch := New(nil, 0)

	count := 0
	for range orch.Stream(context.Background(), "x", nil) {
		count++
	}
	if count != 0 {
		t.Errorf("Expected no responses, got %d", count)
	}
}

// --- StopAll Tests ---
