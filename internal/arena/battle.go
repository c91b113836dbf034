// Package arena runs blind head-to-head battles between two models and
// feeds the votes into the rating ladder.
package arena

import (
	"fmt"
	"time"
)

// Response is one side of a battle.
type Response struct {
	ModelID    string        `json:"modelId"`
	Content    string        `json:"content"`
	Latency    time.Duration `json:"latency"`
	TokenCount int           `json:"tokenCount"`
	Cost       float64       `json:"cost"`
	Votes      int           `json:"votes"`
}

// Battle pits exactly two models against the same prompt.
type Battle struct {
	ID        string      `json:"id"`
	Prompt    string      `json:"prompt"`
	Models    [2]string   `json:"models"`
	Responses [2]Response `json:"responses"`
	CreatedAt time.Time   `json:"createdAt"`
	Voted     bool        `json:"voted"`
	Draw      bool        `json:"draw"`
	WinnerID  string      `json:"winnerId,omitempty"`
}

// Side returns the index of modelID in the battle, or -1.
func (b Battle) Side(modelID string) int {
	for i, id := range b.Models {
		if id == modelID {
			return i
		}
	}
	return -1
}

// Opponent returns the other participant.
func (b Battle) Opponent(modelID string) string {
	switch b.Side(modelID) {
	case 0:
		return b.Models[1]
	case 1:
		return b.Models[0]
	}
	return ""
}

func battleID(t time.Time) string {
	return fmt.Sprintf("battle-%d", t.UnixMilli())
}
