// Package server exposes the arena over HTTP with server-sent events for
// per-model progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tmaxmax/go-sse"

	"modelarena/internal/arena"
	"modelarena/internal/chat"
	"modelarena/internal/db"
	"modelarena/internal/export"
	"modelarena/internal/models"
	"modelarena/internal/orchestrator"
	"modelarena/internal/rating"
)

const (
	errLoggerKey = "err"

	battlesSSETopic = "battles"
)

// FeedbackStore persists user feedback.
type FeedbackStore interface {
	AddFeedback(f db.Feedback) (int64, error)
	ListFeedback() ([]db.Feedback, error)
}

// Deps are the components served over HTTP. Feedback may be nil.
type Deps struct {
	Catalog      *models.Registry
	Orchestrator *orchestrator.Orchestrator
	Session      *chat.Session
	Arena        *arena.Arena
	Feedback     FeedbackStore
	Logger       *slog.Logger
}

// Server routes API requests and owns the SSE broker.
type Server struct {
	deps   Deps
	sseSrv *sse.Server
	mux    *http.ServeMux
	logger *slog.Logger
}

// New creates a server and registers its routes.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		deps:   deps,
		mux:    http.NewServeMux(),
		logger: logger.With(slog.String("module", "server")),
		sseSrv: &sse.Server{
			OnSession: func(sess *sse.Session) (sse.Subscription, bool) {
				topics := []string{sse.DefaultTopic, battlesSSETopic}

				// Clients that want the results of one compare request pass its stream id.
				if id := sess.Req.URL.Query().Get("stream"); id != "" {
					topics = append(topics, streamTopic(id))
				}

				return sse.Subscription{
					Client:      sess,
					LastEventID: sess.LastEventID,
					Topics:      topics,
				}, true
			},
		},
	}

	s.mux.HandleFunc("GET /api/models", s.handleModels)
	s.mux.HandleFunc("GET /api/models/{id}", s.handleModel)
	s.mux.HandleFunc("POST /api/compare", s.handleCompare)
	s.mux.HandleFunc("POST /api/battles", s.handleStartBattle)
	s.mux.HandleFunc("GET /api/battles", s.handleBattles)
	s.mux.HandleFunc("POST /api/battles/{id}/vote", s.handleVote)
	s.mux.HandleFunc("GET /api/rankings", s.handleRankings)
	s.mux.HandleFunc("DELETE /api/rankings", s.handleResetRankings)
	s.mux.HandleFunc("POST /api/conversations", s.handleCreateConversation)
	s.mux.HandleFunc("GET /api/conversations", s.handleConversations)
	s.mux.HandleFunc("GET /api/conversations/{id}", s.handleConversation)
	s.mux.HandleFunc("POST /api/conversations/{id}/messages", s.handleAsk)
	s.mux.HandleFunc("GET /api/conversations/{id}/export", s.handleExport)
	s.mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	s.mux.HandleFunc("GET /api/feedback", s.handleListFeedback)
	s.mux.Handle("GET /sse", s.sseSrv)

	return s
}

// ServeHTTP logs and dispatches a request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	if r.URL.Path != "/sse" {
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("took", time.Since(start)))
	}
}

// Shutdown tells SSE clients to disconnect and closes their sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: sse.Type("close")}
	e.AppendData("bye")
	_ = s.sseSrv.Publish(e)

	return s.sseSrv.Shutdown(ctx)
}

func streamTopic(id string) string {
	return "stream-" + id
}

func (s *Server) publish(eventType string, v any, topics ...string) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to marshal event", slog.String("type", eventType), slog.String(errLoggerKey, err.Error()))
		return
	}
	msg := sse.Message{Type: sse.Type(eventType)}
	msg.AppendData(string(data))
	if err := s.sseSrv.Publish(&msg, topics...); err != nil {
		s.logger.Warn("Failed to publish event", slog.String("type", eventType), slog.String(errLoggerKey, err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

var (
	errBadRequest      = errors.New("invalid request body")
	errEmptyPrompt     = errors.New("prompt is empty")
	errUnknownModel    = errors.New("unknown model")
	errModelNotFound   = errors.New("model not found")
	errNoFeedbackStore = errors.New("feedback storage is disabled")
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrNotFound),
		errors.Is(err, arena.ErrNotFound),
		errors.Is(err, errModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, arena.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, errEmptyPrompt),
		errors.Is(err, errUnknownModel),
		errors.Is(err, chat.ErrEmptyPrompt),
		errors.Is(err, chat.ErrNoModels),
		errors.Is(err, chat.ErrUnknownModel),
		errors.Is(err, arena.ErrEmptyPrompt),
		errors.Is(err, arena.ErrNeedTwoModels),
		errors.Is(err, arena.ErrUnknownModel),
		errors.Is(err, arena.ErrNotParticipant),
		errors.Is(err, rating.ErrSameModel),
		errors.Is(err, rating.ErrUnknownModel),
		errors.Is(err, orchestrator.ErrNoModels),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, db.ErrEmptyFeedback),
		errors.Is(err, db.ErrFeedbackType):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errNoFeedbackStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String(errLoggerKey, err.Error()))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
