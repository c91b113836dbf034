// internal/models/types.go
package models

// Provider names the company or platform serving a model.
type Provider string

const (
	ProviderOpenAI      Provider = "OpenAI"
	ProviderAnthropic   Provider = "Anthropic"
	ProviderGoogle      Provider = "Google"
	ProviderCohere      Provider = "Cohere"
	ProviderMeta        Provider = "Meta"
	ProviderMistral     Provider = "Mistral"
	ProviderHuggingFace Provider = "Hugging Face"
	ProviderAzureOpenAI Provider = "Azure OpenAI"
)

// Chunk represents a piece of streaming response
type Chunk struct {
	Text      string
	Done      bool
	Error     error
	IsTimeout bool // Distinguishes timeout from other errors
}

// ModelStatus represents the current state of a model
type ModelStatus int

const (
	StatusIdle ModelStatus = iota
	StatusResponding
	StatusWaiting
	StatusError
	StatusTimeout
)

func (s ModelStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusResponding:
		return "responding"
	case StatusWaiting:
		return "waiting"
	case StatusError:
		return "error"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ModelInfo is the static descriptor of one provider model. Values are
// reference data and are never mutated after the catalog is built.
type ModelInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Provider        Provider `json:"provider"`
	Description     string   `json:"description"`
	Capabilities    []string `json:"capabilities"`
	InputCostPer1K  float64  `json:"inputCostPer1kTokens"`
	OutputCostPer1K float64  `json:"outputCostPer1kTokens"`
	MaxTokens       int      `json:"maxTokens"`
	ContextWindow   int      `json:"contextWindow"`
	Elo             int      `json:"elo"`
	Popularity      int      `json:"popularity"`
	Badge           string   `json:"badge,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
}
