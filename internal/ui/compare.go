package ui

import (
	"fmt"
	"strings"
	"time"

	"modelarena/internal/orchestrator"
)

const barWidth = 20

func bar(fraction float64) string {
	n := int(fraction*barWidth + 0.5)
	return BarStyle.Render(strings.Repeat("█", n)) + DimStyle.Render(strings.Repeat("░", barWidth-n))
}

// RenderComparison draws relative latency, token and cost bars per model.
func RenderComparison(c orchestrator.Comparison, name func(string) string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Comparison for %q\n\n", c.Prompt)
	for _, r := range c.Results {
		label := name(r.ModelID)
		if r.ModelID == c.FastestID {
			label += " (fastest)"
		}
		if r.ModelID == c.CheapestID {
			label += " (cheapest)"
		}
		sb.WriteString(label)
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  latency %s %s\n",
			bar(orchestrator.Fraction(float64(r.Latency), float64(c.MaxLatency))), r.Latency.Round(10*time.Millisecond))
		fmt.Fprintf(&sb, "  tokens  %s %d\n",
			bar(orchestrator.Fraction(float64(r.TokenCount), float64(c.MaxTokens))), r.TokenCount)
		fmt.Fprintf(&sb, "  cost    %s $%.4f\n",
			bar(orchestrator.Fraction(r.Cost, c.MaxCost)), r.Cost)
	}
	return strings.TrimRight(sb.String(), "\n")
}
