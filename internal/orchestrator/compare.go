package orchestrator

import (
	"context"
	"time"

	"modelarena/internal/models"
)

// Comparison is a side-by-side run of one prompt across several models,
// with the maxima needed to draw relative metric bars.
type Comparison struct {
	Prompt    string
	Results   []Result
	Timestamp time.Time

	MaxLatency time.Duration
	MaxTokens  int
	MaxCost    float64

	FastestID  string
	CheapestID string
}

// Compare runs Aggregate and summarizes the metrics.
func (o *Orchestrator) Compare(ctx context.Context, prompt string, infos []models.ModelInfo) (Comparison, error) {
	results, err := o.Aggregate(ctx, prompt, infos)
	if err != nil {
		return Comparison{}, err
	}
	return Summarize(prompt, results), nil
}

// Summarize computes the comparison summary of results. Ties go to the
// earlier model in results.
func Summarize(prompt string, results []Result) Comparison {
	c := Comparison{
		Prompt:    prompt,
		Results:   results,
		Timestamp: time.Now(),
	}

	fastest, cheapest := -1, -1
	for i, r := range results {
		c.MaxLatency = max(c.MaxLatency, r.Latency)
		c.MaxTokens = max(c.MaxTokens, r.TokenCount)
		c.MaxCost = max(c.MaxCost, r.Cost)

		if fastest < 0 || r.Latency < results[fastest].Latency {
			fastest = i
		}
		if cheapest < 0 || r.Cost < results[cheapest].Cost {
			cheapest = i
		}
	}
	if fastest >= 0 {
		c.FastestID = results[fastest].ModelID
		c.CheapestID = results[cheapest].ModelID
	}

	return c
}

// Fraction scales v against maxV into [0,1] for metric bars.
func Fraction(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return min(v/maxV, 1)
}
