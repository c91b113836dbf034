package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"modelarena/internal/models"
	"modelarena/internal/orchestrator"
)

var (
	ErrEmptyPrompt  = errors.New("prompt is empty")
	ErrNoModels     = errors.New("select at least one model")
	ErrUnknownModel = errors.New("unknown model")
	ErrNotFound     = errors.New("conversation not found")
)

// Catalog resolves model ids into descriptors.
type Catalog interface {
	Resolve(ids []string) ([]models.ModelInfo, []string)
}

// Aggregator runs one prompt across several models.
type Aggregator interface {
	Aggregate(ctx context.Context, prompt string, infos []models.ModelInfo) ([]orchestrator.Result, error)
}

// Store persists conversations. Session works without one.
type Store interface {
	SaveConversation(conv Conversation) error
	AddMessage(convID string, msg Message) error
}

// Option configures a Session.
type Option func(*Session)

// WithStore persists every change through store.
func WithStore(store Store) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger.With(slog.String("module", "chat")) }
}

// WithDefaultModels sets the models used by conversations created without
// an explicit selection.
func WithDefaultModels(ids ...string) Option {
	return func(s *Session) { s.defaults = append([]string(nil), ids...) }
}

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session holds the conversations of one user. It is safe for concurrent
// use by the TUI and HTTP handlers.
type Session struct {
	catalog Catalog
	agg     Aggregator
	store   Store
	logger  *slog.Logger
	now     func() time.Time

	mu            sync.Mutex
	conversations []*Conversation // creation order
	current       string
	defaults      []string
	spend         float64
}

// NewSession creates an empty session.
func NewSession(catalog Catalog, agg Aggregator, opts ...Option) *Session {
	s := &Session{
		catalog: catalog,
		agg:     agg,
		logger:  slog.Default().With(slog.String("module", "chat")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads previously persisted conversations into the session. The
// most recent one becomes current.
func (s *Session) Restore(convs []Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range convs {
		if s.find(c.ID) != nil {
			continue
		}
		cc := c.clone()
		s.conversations = append(s.conversations, &cc)
		s.spend += cc.Cost()
	}
	slices.SortStableFunc(s.conversations, func(a, b *Conversation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if n := len(s.conversations); n > 0 && s.current == "" {
		s.current = s.conversations[n-1].ID
	}
}

// CreateConversation starts a conversation and makes it current. An empty
// title becomes DefaultTitle; no ids selects the session defaults.
func (s *Session) CreateConversation(title string, modelIDs []string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.create(title, modelIDs)
	if err != nil {
		return Conversation{}, err
	}
	return conv.clone(), nil
}

func (s *Session) create(title string, modelIDs []string) (*Conversation, error) {
	if len(modelIDs) == 0 {
		modelIDs = s.defaults
	}
	if _, err := s.resolve(modelIDs); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	created := s.now()
	id := conversationID(created)
	for s.find(id) != nil {
		created = created.Add(time.Millisecond)
		id = conversationID(created)
	}

	conv := &Conversation{
		ID:        id,
		Title:     title,
		CreatedAt: created,
		Models:    append([]string(nil), modelIDs...),
	}
	if s.store != nil {
		if err := s.store.SaveConversation(*conv); err != nil {
			return nil, fmt.Errorf("save conversation: %w", err)
		}
	}
	s.conversations = append(s.conversations, conv)
	s.current = id

	s.logger.Debug("conversation created", slog.String("id", id), slog.Any("models", conv.Models))
	return conv, nil
}

func (s *Session) resolve(ids []string) ([]models.ModelInfo, error) {
	if len(ids) == 0 {
		return nil, ErrNoModels
	}
	infos, missing := s.catalog.Resolve(ids)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, strings.Join(missing, ", "))
	}
	return infos, nil
}

func (s *Session) find(id string) *Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Conversations returns every conversation, newest first.
func (s *Session) Conversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversation, 0, len(s.conversations))
	for i := len(s.conversations) - 1; i >= 0; i-- {
		out = append(out, s.conversations[i].clone())
	}
	return out
}

// Conversation returns the conversation with the given id.
func (s *Session) Conversation(id string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return Conversation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.clone(), nil
}

// Current returns the active conversation, if any.
func (s *Session) Current() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(s.current)
	if c == nil {
		return Conversation{}, false
	}
	return c.clone(), true
}

// Select makes the conversation with id current.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.current = id
	return nil
}

// SetModels changes the models of the current conversation. Without a
// current conversation it changes the defaults for the next one.
func (s *Session) SetModels(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.resolve(ids); err != nil {
		return err
	}
	ids = append([]string(nil), ids...)
	if c := s.find(s.current); c != nil {
		c.Models = ids
		if s.store != nil {
			if err := s.store.SaveConversation(*c); err != nil {
				return fmt.Errorf("save conversation: %w", err)
			}
		}
		return nil
	}
	s.defaults = ids
	return nil
}

// Models returns the model ids the next prompt would be sent to.
func (s *Session) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.find(s.current); c != nil {
		return append([]string(nil), c.Models...)
	}
	return append([]string(nil), s.defaults...)
}

// AddMessage appends msg to the conversation with convID.
func (s *Session) AddMessage(convID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(convID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, convID)
	}
	return s.appendMessage(c, msg)
}

func (s *Session) appendMessage(c *Conversation, msg Message) error {
	if msg.ID == "" {
		msg.ID = NewMessage(msg.Role, msg.Content).ID
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	if s.store != nil {
		if err := s.store.AddMessage(c.ID, msg); err != nil {
			return fmt.Errorf("save message: %w", err)
		}
	}
	c.Messages = append(c.Messages, msg)
	s.spend += msg.Cost()
	return nil
}

// Ask sends prompt to every model of the current conversation, creating one
// when none is current. It returns the assistant turn.
func (s *Session) Ask(ctx context.Context, prompt string) (Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Message{}, ErrEmptyPrompt
	}

	s.mu.Lock()
	c := s.find(s.current)
	if c == nil {
		var err error
		if c, err = s.create("", nil); err != nil {
			s.mu.Unlock()
			return Message{}, err
		}
	}
	return s.ask(ctx, c, prompt)
}

// AskIn is Ask against the conversation with convID, which does not become
// current.
func (s *Session) AskIn(ctx context.Context, convID, prompt string) (Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Message{}, ErrEmptyPrompt
	}

	s.mu.Lock()
	c := s.find(convID)
	if c == nil {
		s.mu.Unlock()
		return Message{}, fmt.Errorf("%w: %s", ErrNotFound, convID)
	}
	return s.ask(ctx, c, prompt)
}

// ask must be called with s.mu held; it releases the lock. The user turn is
// stored together with the reply, so a cancelled or failed fan-out leaves the
// conversation as it was.
func (s *Session) ask(ctx context.Context, c *Conversation, prompt string) (Message, error) {
	infos, err := s.resolve(c.Models)
	if err != nil {
		s.mu.Unlock()
		return Message{}, err
	}
	question := NewMessage(RoleUser, prompt)
	question.Timestamp = s.now()
	convID := c.ID
	s.mu.Unlock()

	// The fan-out runs without the lock so other conversations stay usable.
	results, err := s.agg.Aggregate(ctx, prompt, infos)
	if err != nil {
		return Message{}, err
	}

	reply := NewMessage(RoleAssistant, "")
	reply.Responses = make([]ModelResponse, len(results))
	for i, r := range results {
		reply.Responses[i] = ModelResponse{
			ModelID:    r.ModelID,
			Content:    r.Content,
			Latency:    r.Latency,
			TokenCount: r.TokenCount,
			Cost:       r.Cost,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c = s.find(convID)
	if c == nil {
		return Message{}, fmt.Errorf("%w: %s", ErrNotFound, convID)
	}
	if c.Title == DefaultTitle && len(c.Messages) == 0 {
		c.Title = TitleFrom(prompt)
		if s.store != nil {
			if err := s.store.SaveConversation(*c); err != nil {
				s.logger.Warn("rename conversation failed", slog.String("id", c.ID), slog.Any("error", err))
			}
		}
	}
	if err := s.appendMessage(c, question); err != nil {
		return Message{}, err
	}
	if err := s.appendMessage(c, reply); err != nil {
		return Message{}, err
	}

	s.logger.Info("prompt answered",
		slog.String("conversation", convID),
		slog.Int("models", len(results)),
		slog.Float64("cost", reply.Cost()))

	return reply, nil
}

// Spend returns the total cost of every response in the session.
func (s *Session) Spend() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spend
}
