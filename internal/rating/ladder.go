package rating

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrSameModel    = errors.New("a model cannot play against itself")
)

// Outcome is the result of one pairwise comparison.
type Outcome struct {
	WinnerID string `json:"winnerId"`
	LoserID  string `json:"loserId"`
	Draw     bool   `json:"draw"`
}

// Standing is one row of the leaderboard.
type Standing struct {
	Rank    int    `json:"rank"`
	ModelID string `json:"modelId"`
	Rating  int    `json:"rating"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Draws   int    `json:"draws"`
}

// Ladder holds the session's ratings and applies outcomes to them one at a
// time. It is safe for concurrent use.
type Ladder struct {
	mu       sync.Mutex
	initial  Ratings
	current  Ratings
	k        int
	def      int
	strict   bool
	records  map[string]*Standing
	recorded int
}

// LadderOption configures a Ladder.
type LadderOption func(*Ladder)

// WithK overrides the sensitivity constant.
func WithK(k int) LadderOption {
	return func(l *Ladder) {
		if k > 0 {
			l.k = k
		}
	}
}

// WithDefault sets the starting rating of models that join the ladder
// through Record.
func WithDefault(rating int) LadderOption {
	return func(l *Ladder) {
		if rating > 0 {
			l.def = rating
		}
	}
}

// Strict makes Record reject ids that are not on the ladder instead of
// starting them at DefaultRating.
func Strict(strict bool) LadderOption {
	return func(l *Ladder) {
		l.strict = strict
	}
}

// NewLadder creates a ladder seeded with initial.
func NewLadder(initial Ratings, opts ...LadderOption) *Ladder {
	l := &Ladder{
		initial: initial.Clone(),
		current: initial.Clone(),
		k:       KFactor,
		def:     DefaultRating,
		records: make(map[string]*Standing),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record applies o against the current snapshot and returns the full
// updated mapping.
func (l *Ladder) Record(o Outcome) (Ratings, error) {
	if o.WinnerID == "" || o.LoserID == "" {
		return nil, fmt.Errorf("%w: empty model id", ErrUnknownModel)
	}
	if o.WinnerID == o.LoserID {
		return nil, ErrSameModel
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range []string{o.WinnerID, o.LoserID} {
		if _, ok := l.current[id]; ok {
			continue
		}
		if l.strict {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModel, id)
		}
		l.current[id] = l.def
	}

	l.current = UpdateK(l.current, o.WinnerID, o.LoserID, o.Draw, l.k)
	l.recorded++

	w, lo := l.record(o.WinnerID), l.record(o.LoserID)
	if o.Draw {
		w.Draws++
		lo.Draws++
	} else {
		w.Wins++
		lo.Losses++
	}

	return l.current.Clone(), nil
}

func (l *Ladder) record(id string) *Standing {
	s, ok := l.records[id]
	if !ok {
		s = &Standing{ModelID: id}
		l.records[id] = s
	}
	return s
}

// Snapshot returns a copy of the current ratings.
func (l *Ladder) Snapshot() Ratings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Clone()
}

// Rating returns the current rating of id.
func (l *Ladder) Rating(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Get(id)
}

// Recorded returns how many outcomes have been applied since the last reset.
func (l *Ladder) Recorded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recorded
}

// Leaderboard lists every rated model, highest rating first. Ties are
// broken by model id.
func (l *Ladder) Leaderboard() []Standing {
	l.mu.Lock()
	defer l.mu.Unlock()

	board := make([]Standing, 0, len(l.current))
	for id, r := range l.current {
		s := Standing{ModelID: id, Rating: r}
		if rec, ok := l.records[id]; ok {
			s.Wins, s.Losses, s.Draws = rec.Wins, rec.Losses, rec.Draws
		}
		board = append(board, s)
	}

	sort.Slice(board, func(i, j int) bool {
		if board[i].Rating != board[j].Rating {
			return board[i].Rating > board[j].Rating
		}
		return board[i].ModelID < board[j].ModelID
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board
}

// Reset restores the initial ratings and clears the win/loss records.
func (l *Ladder) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = l.initial.Clone()
	l.records = make(map[string]*Standing)
	l.recorded = 0
}
