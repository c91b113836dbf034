// internal/models/catalog.go
package models

// Builtin returns the reference catalog, in display order. The returned
// slice is a fresh copy on every call.
func Builtin() []ModelInfo {
	return []ModelInfo{
		{
			ID:              "gpt-4",
			Name:            "GPT-4 Turbo",
			Provider:        ProviderOpenAI,
			Description:     "OpenAI's most advanced model with improved reasoning and knowledge cutoff in 2023",
			Capabilities:    []string{"Text Generation", "Code Generation", "Reasoning", "Creative Writing"},
			InputCostPer1K:  0.01,
			OutputCostPer1K: 0.03,
			MaxTokens:       4096,
			ContextWindow:   128000,
			Elo:             1800,
			Popularity:      95,
			Badge:           "Premium",
			Strengths:       []string{"Reasoning", "Knowledge", "Code Generation"},
			Weaknesses:      []string{"Hallucinations", "Cost"},
		},
		{
			ID:              "claude-3-opus",
			Name:            "Claude 3 Opus",
			Provider:        ProviderAnthropic,
			Description:     "Anthropic's most powerful model with industry-leading reasoning and accuracy",
			Capabilities:    []string{"Text Generation", "Code Generation", "Complex Reasoning"},
			InputCostPer1K:  0.015,
			OutputCostPer1K: 0.075,
			MaxTokens:       4096,
			ContextWindow:   200000,
			Elo:             1780,
			Popularity:      80,
			Badge:           "Enterprise",
			Strengths:       []string{"Factual Accuracy", "Following Instructions", "Long Context"},
			Weaknesses:      []string{"Cost", "Speed"},
		},
		{
			ID:              "gemini-pro",
			Name:            "Gemini Pro",
			Provider:        ProviderGoogle,
			Description:     "Google's multimodal model with strong reasoning capabilities",
			Capabilities:    []string{"Text Generation", "Multimodal Understanding", "Research"},
			InputCostPer1K:  0.00125,
			OutputCostPer1K: 0.00375,
			MaxTokens:       8192,
			ContextWindow:   32000,
			Elo:             1650,
			Popularity:      85,
			Strengths:       []string{"Multimodal", "Factual Accuracy", "Cost-Effective"},
			Weaknesses:      []string{"Creativity", "Instruction Following"},
		},
		{
			ID:              "llama-3-70b",
			Name:            "Llama 3 70B",
			Provider:        ProviderMeta,
			Description:     "Meta's latest open-source large language model",
			Capabilities:    []string{"Text Generation", "Code Generation", "Open-Source"},
			InputCostPer1K:  0.0005,
			OutputCostPer1K: 0.0015,
			MaxTokens:       4096,
			ContextWindow:   8000,
			Elo:             1600,
			Popularity:      75,
			Strengths:       []string{"Open-Source", "Cost-Effective", "Community Support"},
			Weaknesses:      []string{"Context Length", "Specialized Knowledge"},
		},
		{
			ID:              "mixtral-8x7b",
			Name:            "Mixtral 8x7B",
			Provider:        ProviderMistral,
			Description:     "Mistral's mixture-of-experts model with strong capabilities",
			Capabilities:    []string{"Text Generation", "Code Generation", "Efficient Inference"},
			InputCostPer1K:  0.0004,
			OutputCostPer1K: 0.0012,
			MaxTokens:       4096,
			ContextWindow:   32000,
			Elo:             1550,
			Popularity:      70,
			Strengths:       []string{"Efficiency", "Long Context", "Code Generation"},
			Weaknesses:      []string{"Advanced Reasoning"},
		},
		{
			ID:              "command-r",
			Name:            "Command R",
			Provider:        ProviderCohere,
			Description:     "Cohere's command model optimized for search and retrieval",
			Capabilities:    []string{"Text Generation", "Search Optimization", "Enterprise Applications"},
			InputCostPer1K:  0.0075,
			OutputCostPer1K: 0.0225,
			MaxTokens:       4096,
			ContextWindow:   128000,
			Elo:             1500,
			Popularity:      65,
			Strengths:       []string{"Search", "Retrieval", "Enterprise Integration"},
			Weaknesses:      []string{"Creative Writing"},
		},
	}
}
