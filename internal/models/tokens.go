// internal/models/tokens.go
package models

import "unicode/utf8"

// EstimateTokens approximates the token count of text at four characters per
// token, rounded up.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Cost prices a call from its input and output token counts using the
// model's per-1K rates.
func Cost(inputTokens, outputTokens int, info ModelInfo) float64 {
	inputCost := float64(inputTokens) / 1000 * info.InputCostPer1K
	outputCost := float64(outputTokens) / 1000 * info.OutputCostPer1K
	return inputCost + outputCost
}
