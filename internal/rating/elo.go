// Package rating implements pairwise Elo updates for arena battles.
package rating

import "math"

const (
	// KFactor is the sensitivity of a single rating change.
	KFactor = 32

	// DefaultRating is used for any model id absent from a baseline.
	DefaultRating = 1500
)

// Ratings maps a model id to its integer Elo rating.
type Ratings map[string]int

// Clone returns an independent copy of r.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for id, v := range r {
		out[id] = v
	}
	return out
}

// Get returns the rating for id, or DefaultRating when id is unknown.
func (r Ratings) Get(id string) int {
	if v, ok := r[id]; ok {
		return v
	}
	return DefaultRating
}

// BuiltinRatings returns the fixed starting ratings of the built-in models.
func BuiltinRatings() Ratings {
	return Ratings{
		"gpt-4":         1800,
		"claude-3-opus": 1780,
		"gemini-pro":    1650,
		"llama-3-70b":   1600,
		"mixtral-8x7b":  1550,
		"command-r":     1500,
	}
}

// Expected is the logistic expected score of a player rated ra against one
// rated rb.
func Expected(ra, rb int) float64 {
	return 1 / (1 + math.Pow(10, float64(rb-ra)/400))
}

// Update computes new ratings after winnerID beat loserID, or after the two
// drew when draw is set. Unknown ids start at DefaultRating. The baseline
// is left untouched; the result holds every baseline entry plus both
// participants.
func Update(baseline Ratings, winnerID, loserID string, draw bool) Ratings {
	return UpdateK(baseline, winnerID, loserID, draw, KFactor)
}

// UpdateK is Update with an explicit sensitivity constant. A model cannot
// play itself: when winnerID equals loserID the baseline is returned
// unchanged.
func UpdateK(baseline Ratings, winnerID, loserID string, draw bool, k int) Ratings {
	if winnerID == loserID {
		return baseline.Clone()
	}
	ra := baseline.Get(winnerID)
	rb := baseline.Get(loserID)

	ea := Expected(ra, rb)
	eb := Expected(rb, ra)

	sa, sb := 1.0, 0.0
	if draw {
		sa, sb = 0.5, 0.5
	}

	out := baseline.Clone()
	out[winnerID] = int(math.Round(float64(ra) + float64(k)*(sa-ea)))
	out[loserID] = int(math.Round(float64(rb) + float64(k)*(sb-eb)))
	return out
}
