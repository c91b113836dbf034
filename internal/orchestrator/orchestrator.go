// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"modelarena/internal/models"
)

// Common error types
var (
	ErrNoModels = errors.New("at least one model is required")
	ErrTimeout  = errors.New("model response timed out")
	ErrNoOutput = errors.New("model closed its stream without output")
)

// Backends looks up the backend serving a model id. It returns nil when the
// id has no registered backend.
type Backends interface {
	Get(id string) models.Model
}

// Result is one model's answer to a prompt with its usage metadata.
type Result struct {
	ModelID        string
	Content        string
	Latency        time.Duration
	PromptTokens   int
	ResponseTokens int
	TokenCount     int // PromptTokens + ResponseTokens
	Cost           float64
}

// Response is delivered by Stream as each model finishes.
type Response struct {
	Index     int // position of the model in the request
	Result    Result
	Error     error
	IsTimeout bool
}

// Orchestrator fans a single prompt out to several models.
type Orchestrator struct {
	backends Backends
	timeout  time.Duration
	simOpts  []models.SimOption
	logger   *slog.Logger
}

// New creates an orchestrator. A zero timeout lets every generation run to
// completion.
func New(backends Backends, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		backends: backends,
		timeout:  timeout,
		logger:   slog.Default().With(slog.String("module", "orchestrator")),
	}
}

// WithLogger replaces the orchestrator's logger.
func (o *Orchestrator) WithLogger(logger *slog.Logger) *Orchestrator {
	o.logger = logger.With(slog.String("module", "orchestrator"))
	return o
}

// WithSimOptions sets the options used for descriptors that have no
// registered backend.
func (o *Orchestrator) WithSimOptions(opts ...models.SimOption) *Orchestrator {
	o.simOpts = opts
	return o
}

func (o *Orchestrator) backendFor(info models.ModelInfo) models.Model {
	if o.backends != nil {
		if m := o.backends.Get(info.ID); m != nil {
			return m
		}
	}
	return models.NewSimulated(info, o.simOpts...)
}

// Aggregate sends prompt to every model concurrently and returns one result
// per model in input order. Total latency is that of the slowest model.
func (o *Orchestrator) Aggregate(ctx context.Context, prompt string, infos []models.ModelInfo) ([]Result, error) {
	if len(infos) == 0 {
		return nil, ErrNoModels
	}

	results := make([]Result, len(infos))
	g, gctx := errgroup.WithContext(ctx)

	for i, info := range infos {
		g.Go(func() error {
			res, err := o.collect(gctx, o.backendFor(info), info, prompt)
			if err != nil {
				return fmt.Errorf("%s: %w", info.ID, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Debug("aggregation complete",
		slog.Int("models", len(infos)),
		slog.Int("promptTokens", results[0].PromptTokens))

	return results, nil
}

// Stream is Aggregate delivered incrementally. The channel is closed once
// every model has answered or failed.
func (o *Orchestrator) Stream(ctx context.Context, prompt string, infos []models.ModelInfo) <-chan Response {
	responses := make(chan Response, len(infos))

	var wg sync.WaitGroup

	for i, info := range infos {
		wg.Add(1)
		go func(i int, info models.ModelInfo) {
			defer wg.Done()
			res, err := o.collect(ctx, o.backendFor(info), info, prompt)
			responses <- Response{
				Index:     i,
				Result:    res,
				Error:     err,
				IsTimeout: errors.Is(err, ErrTimeout),
			}
		}(i, info)
	}

	// Close responses channel when all models done
	go func() {
		wg.Wait()
		close(responses)
	}()

	return responses
}

// collect drains one model's stream and prices the answer.
func (o *Orchestrator) collect(ctx context.Context, m models.Model, info models.ModelInfo, prompt string) (Result, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	chunks := m.Send(ctx, prompt)

	var (
		content []byte
		done    bool
	)
	for chunk := range chunks {
		if chunk.Error != nil {
			if chunk.IsTimeout || errors.Is(chunk.Error, context.DeadlineExceeded) {
				m.SetStatus(models.StatusTimeout)
				return Result{ModelID: info.ID}, ErrTimeout
			}
			m.SetStatus(models.StatusError)
			return Result{ModelID: info.ID}, chunk.Error
		}
		content = append(content, chunk.Text...)
		if chunk.Done {
			done = true
			break
		}
	}

	// Channel closed without Done - treat as complete if we got content
	if !done && len(content) == 0 {
		return Result{ModelID: info.ID}, ErrNoOutput
	}

	text := string(content)
	promptTokens := models.EstimateTokens(prompt)
	responseTokens := models.EstimateTokens(text)

	res := Result{
		ModelID:        info.ID,
		Content:        text,
		Latency:        time.Since(start),
		PromptTokens:   promptTokens,
		ResponseTokens: responseTokens,
		TokenCount:     promptTokens + responseTokens,
		Cost:           models.Cost(promptTokens, responseTokens, info),
	}

	o.logger.Debug("model answered",
		slog.String("model", info.ID),
		slog.Duration("latency", res.Latency),
		slog.Int("tokens", res.TokenCount))

	return res, nil
}
