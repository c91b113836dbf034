// internal/models/simulated.go
package models

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// delayRange is a fixed part plus a uniformly random jitter, in milliseconds.
type delayRange struct {
	fixed  float64
	jitter float64
}

var (
	baseDelay = delayRange{fixed: 500, jitter: 1000}

	providerDelays = map[Provider]delayRange{
		ProviderOpenAI:    {800, 500},
		ProviderAnthropic: {1200, 800},
		ProviderGoogle:    {600, 400},
		ProviderCohere:    {700, 600},
		ProviderMeta:      {500, 300},
		ProviderMistral:   {400, 300},
	}
	defaultProviderDelay = delayRange{1000, 500}
)

const fillerParagraph = "Furthermore, analyzing this topic requires considering multiple perspectives. " +
	"There are various factors to take into account including contextual relevance, historical precedents, " +
	"and potential future implications."

// SimOption configures a Simulated model.
type SimOption func(*Simulated)

// WithDelayScale multiplies every simulated delay by scale. Zero makes
// generations complete immediately.
func WithDelayScale(scale float64) SimOption {
	return func(s *Simulated) {
		if scale < 0 {
			scale = 0
		}
		s.delayScale = scale
	}
}

// WithSeed makes the latency jitter reproducible.
func WithSeed(seed uint64) SimOption {
	return func(s *Simulated) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// Simulated stands in for a provider API. It waits a provider-shaped random
// latency and then streams templated text.
type Simulated struct {
	BaseModel
	delayScale float64

	mu     sync.Mutex
	rng    *rand.Rand
	cancel context.CancelFunc
}

func NewSimulated(info ModelInfo, opts ...SimOption) *Simulated {
	s := &Simulated{
		BaseModel:  NewBaseModel(info),
		delayScale: 1,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay draws the latency of the next generation.
func (m *Simulated) Delay() time.Duration {
	pd, ok := providerDelays[m.info.Provider]
	if !ok {
		pd = defaultProviderDelay
	}

	m.mu.Lock()
	ms := baseDelay.fixed + m.rng.Float64()*baseDelay.jitter +
		pd.fixed + m.rng.Float64()*pd.jitter
	m.mu.Unlock()

	return time.Duration(ms * m.delayScale * float64(time.Millisecond))
}

func (m *Simulated) Send(ctx context.Context, prompt string) <-chan Chunk {
	ch := make(chan Chunk, 8)

	genCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	delay := m.Delay()

	go func() {
		defer close(ch)
		defer cancel()
		m.SetStatus(StatusResponding)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-genCtx.Done():
			isTimeout := errors.Is(genCtx.Err(), context.DeadlineExceeded)
			if isTimeout {
				m.SetStatus(StatusTimeout)
			} else {
				m.SetStatus(StatusIdle)
			}
			ch <- Chunk{Error: genCtx.Err(), IsTimeout: isTimeout}
			return
		case <-timer.C:
		}

		paragraphs := strings.SplitAfter(SimulatedResponse(prompt, m.info), "\n\n")
		for _, p := range paragraphs {
			select {
			case ch <- Chunk{Text: p}:
			case <-genCtx.Done():
				m.SetStatus(StatusIdle)
				ch <- Chunk{Error: genCtx.Err()}
				return
			}
		}

		m.SetStatus(StatusIdle)
		ch <- Chunk{Done: true}
	}()

	return ch
}

func (m *Simulated) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// SimulatedResponse builds the placeholder text for prompt. Template and
// length are picked from a hash of the prompt and the model ID, so the same
// pair always yields the same text.
func SimulatedResponse(prompt string, info ModelInfo) string {
	h := fnv.New64a()
	h.Write([]byte(info.ID))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	seed := h.Sum64()

	var sb strings.Builder
	switch seed % 3 {
	case 0:
		fmt.Fprintf(&sb, "As %s by %s, I can help with that. %s is an interesting question. "+
			"Here's my detailed analysis based on my knowledge and capabilities...",
			info.Name, info.Provider, clip(prompt, 20))
	case 1:
		fmt.Fprintf(&sb, "I'm %s, and I've processed your query about \"%s\". "+
			"Based on my training data and algorithms, I can provide the following insights...",
			info.Name, clip(prompt, 15))
	default:
		fmt.Fprintf(&sb, "Thank you for your question about %s. As %s's %s model, "+
			"I've analyzed this and can offer the following perspective...",
			clip(prompt, 25), info.Provider, info.Name)
	}

	switch info.Provider {
	case ProviderOpenAI:
		sb.WriteString(" My training includes data up to 2023, and I aim to be helpful, harmless, and honest in my responses.")
	case ProviderAnthropic:
		sb.WriteString(" I strive to be helpful, harmless, and honest while maintaining constitutional AI principles in my responses.")
	case ProviderGoogle:
		sb.WriteString(" As a Google AI model, I leverage Google's research to provide factual and helpful information.")
	default:
		sb.WriteString(" I aim to provide accurate and helpful information based on my training.")
	}

	paragraphs := 1 + int((seed/3)%3)
	for range paragraphs {
		sb.WriteString("\n\n")
		sb.WriteString(fillerParagraph)
	}

	return sb.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
