package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"modelarena/internal/models"
	"modelarena/internal/orchestrator"
	"modelarena/internal/rating"
)

var (
	ErrEmptyPrompt    = errors.New("prompt is empty")
	ErrNeedTwoModels  = errors.New("a battle needs two different models")
	ErrUnknownModel   = errors.New("unknown model")
	ErrNotFound       = errors.New("battle not found")
	ErrAlreadyVoted   = errors.New("battle already voted")
	ErrNotParticipant = errors.New("model is not part of this battle")
)

// DefaultHistory is how many battles are kept.
const DefaultHistory = 10

// Catalog resolves model ids into descriptors.
type Catalog interface {
	Resolve(ids []string) ([]models.ModelInfo, []string)
}

// Aggregator runs one prompt across several models.
type Aggregator interface {
	Aggregate(ctx context.Context, prompt string, infos []models.ModelInfo) ([]orchestrator.Result, error)
}

// Store persists battles and votes.
type Store interface {
	SaveBattle(b Battle) error
	SaveVote(battleID string, outcome rating.Outcome) error
}

// Notifier is told about battles as they start and are decided. Calls are
// made with the arena locked and must not block.
type Notifier interface {
	BattleStarted(b Battle)
	VoteCast(b Battle, ratings rating.Ratings)
}

// Option configures an Arena.
type Option func(*Arena)

func WithStore(store Store) Option {
	return func(a *Arena) { a.store = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Arena) { a.logger = logger.With(slog.String("module", "arena")) }
}

// WithNotifier reports battle activity to n.
func WithNotifier(n Notifier) Option {
	return func(a *Arena) { a.notifier = n }
}

// WithHistory sets how many recent battles are kept.
func WithHistory(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.history = n
		}
	}
}

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option {
	return func(a *Arena) { a.now = now }
}

// Arena holds recent battles and the ladder their votes update.
type Arena struct {
	catalog  Catalog
	agg      Aggregator
	ladder   *rating.Ladder
	store    Store
	notifier Notifier
	logger   *slog.Logger
	history  int
	now      func() time.Time

	mu      sync.Mutex
	battles []*Battle // newest first
}

func New(catalog Catalog, agg Aggregator, ladder *rating.Ladder, opts ...Option) *Arena {
	a := &Arena{
		catalog: catalog,
		agg:     agg,
		ladder:  ladder,
		logger:  slog.Default().With(slog.String("module", "arena")),
		history: DefaultHistory,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ladder returns the ladder votes are recorded on.
func (a *Arena) Ladder() *rating.Ladder {
	return a.ladder
}

// Start runs prompt against both models and stores the battle.
func (a *Arena) Start(ctx context.Context, prompt, modelA, modelB string) (Battle, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Battle{}, ErrEmptyPrompt
	}
	if modelA == "" || modelB == "" || modelA == modelB {
		return Battle{}, ErrNeedTwoModels
	}

	infos, missing := a.catalog.Resolve([]string{modelA, modelB})
	if len(missing) > 0 {
		return Battle{}, fmt.Errorf("%w: %s", ErrUnknownModel, strings.Join(missing, ", "))
	}

	results, err := a.agg.Aggregate(ctx, prompt, infos)
	if err != nil {
		return Battle{}, err
	}

	b := &Battle{
		Prompt: prompt,
		Models: [2]string{modelA, modelB},
	}
	for i, r := range results {
		b.Responses[i] = Response{
			ModelID:    r.ModelID,
			Content:    r.Content,
			Latency:    r.Latency,
			TokenCount: r.TokenCount,
			Cost:       r.Cost,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b.CreatedAt = a.now()
	b.ID = battleID(b.CreatedAt)
	for a.find(b.ID) != nil {
		b.CreatedAt = b.CreatedAt.Add(time.Millisecond)
		b.ID = battleID(b.CreatedAt)
	}

	if a.store != nil {
		if err := a.store.SaveBattle(*b); err != nil {
			return Battle{}, fmt.Errorf("save battle: %w", err)
		}
	}

	a.battles = append([]*Battle{b}, a.battles...)
	if len(a.battles) > a.history {
		a.battles = a.battles[:a.history]
	}

	a.logger.Info("battle started",
		slog.String("id", b.ID),
		slog.String("modelA", modelA),
		slog.String("modelB", modelB))
	if a.notifier != nil {
		a.notifier.BattleStarted(*b)
	}

	return *b, nil
}

func (a *Arena) find(id string) *Battle {
	for _, b := range a.battles {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Vote declares modelID the winner of the battle and updates the ladder.
func (a *Arena) Vote(battleID, modelID string) (Battle, rating.Ratings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := a.votable(battleID)
	if err != nil {
		return Battle{}, nil, err
	}
	side := b.Side(modelID)
	if side < 0 {
		return Battle{}, nil, fmt.Errorf("%w: %s", ErrNotParticipant, modelID)
	}

	outcome := rating.Outcome{WinnerID: modelID, LoserID: b.Opponent(modelID)}
	ratings, err := a.record(b, outcome)
	if err != nil {
		return Battle{}, nil, err
	}

	b.Responses[side].Votes++
	b.WinnerID = modelID
	if a.notifier != nil {
		a.notifier.VoteCast(*b, ratings)
	}
	return *b, ratings, nil
}

// Draw records the battle as a tie.
func (a *Arena) Draw(battleID string) (Battle, rating.Ratings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := a.votable(battleID)
	if err != nil {
		return Battle{}, nil, err
	}

	outcome := rating.Outcome{WinnerID: b.Models[0], LoserID: b.Models[1], Draw: true}
	ratings, err := a.record(b, outcome)
	if err != nil {
		return Battle{}, nil, err
	}

	b.Draw = true
	if a.notifier != nil {
		a.notifier.VoteCast(*b, ratings)
	}
	return *b, ratings, nil
}

func (a *Arena) votable(id string) (*Battle, error) {
	b := a.find(id)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if b.Voted {
		return nil, ErrAlreadyVoted
	}
	return b, nil
}

// record applies the outcome to the ladder and marks the battle voted. The
// caller holds a.mu.
func (a *Arena) record(b *Battle, outcome rating.Outcome) (rating.Ratings, error) {
	ratings, err := a.ladder.Record(outcome)
	if err != nil {
		return nil, err
	}
	b.Voted = true

	if a.store != nil {
		if err := a.store.SaveVote(b.ID, outcome); err != nil {
			a.logger.Warn("persist vote failed", slog.String("battle", b.ID), slog.Any("error", err))
		}
	}

	a.logger.Info("vote recorded",
		slog.String("battle", b.ID),
		slog.String("winner", outcome.WinnerID),
		slog.String("loser", outcome.LoserID),
		slog.Bool("draw", outcome.Draw))

	return ratings, nil
}

// Battles returns the kept battles, newest first.
func (a *Arena) Battles() []Battle {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Battle, len(a.battles))
	for i, b := range a.battles {
		out[i] = *b
	}
	return out
}

// Battle returns the battle with id.
func (a *Arena) Battle(id string) (Battle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b := a.find(id)
	if b == nil {
		return Battle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *b, nil
}

// Latest returns the most recent battle.
func (a *Arena) Latest() (Battle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.battles) == 0 {
		return Battle{}, false
	}
	return *a.battles[0], true
}
