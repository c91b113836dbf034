package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmaxmax/go-sse"

	"modelarena/internal/arena"
	"modelarena/internal/db"
	"modelarena/internal/export"
	"modelarena/internal/models"
	"modelarena/internal/orchestrator"
	"modelarena/internal/rating"
)

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	infos := s.deps.Catalog.Infos()
	if p := r.URL.Query().Get("provider"); p != "" {
		infos = s.deps.Catalog.ByProvider(models.Provider(p))
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	info, ok := s.deps.Catalog.Info(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s", errModelNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type resultJSON struct {
	ModelID        string  `json:"modelId"`
	Content        string  `json:"content,omitempty"`
	LatencyMs      int64   `json:"latencyMs"`
	PromptTokens   int     `json:"promptTokens"`
	ResponseTokens int     `json:"responseTokens"`
	TokenCount     int     `json:"tokenCount"`
	Cost           float64 `json:"cost"`
	Error          string  `json:"error,omitempty"`
	Timeout        bool    `json:"timeout,omitempty"`
}

func newResultJSON(r orchestrator.Result) resultJSON {
	return resultJSON{
		ModelID:        r.ModelID,
		Content:        r.Content,
		LatencyMs:      r.Latency.Milliseconds(),
		PromptTokens:   r.PromptTokens,
		ResponseTokens: r.ResponseTokens,
		TokenCount:     r.TokenCount,
		Cost:           r.Cost,
	}
}

type comparisonJSON struct {
	Prompt       string       `json:"prompt"`
	Results      []resultJSON `json:"results"`
	Timestamp    time.Time    `json:"timestamp"`
	MaxLatencyMs int64        `json:"maxLatencyMs"`
	MaxTokens    int          `json:"maxTokens"`
	MaxCost      float64      `json:"maxCost"`
	FastestID    string       `json:"fastestId"`
	CheapestID   string       `json:"cheapestId"`
}

type compareRequest struct {
	Prompt   string   `json:"prompt"`
	Models   []string `json:"models"`
	StreamID string   `json:"streamId"`
}

// handleCompare runs the prompt on every requested model. Each result is
// published on the request's SSE stream as soon as its model finishes; the
// response carries the full comparison.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		s.writeError(w, r, errEmptyPrompt)
		return
	}
	ids := req.Models
	if len(ids) == 0 && s.deps.Session != nil {
		ids = s.deps.Session.Models()
	}
	infos, missing := s.deps.Catalog.Resolve(ids)
	if len(missing) > 0 {
		s.writeError(w, r, fmt.Errorf("%w: %s", errUnknownModel, strings.Join(missing, ", ")))
		return
	}
	if len(infos) == 0 {
		s.writeError(w, r, orchestrator.ErrNoModels)
		return
	}

	topic := sse.DefaultTopic
	if req.StreamID != "" {
		topic = streamTopic(req.StreamID)
	}

	results := make([]orchestrator.Result, len(infos))
	var firstErr error
	for resp := range s.deps.Orchestrator.Stream(r.Context(), prompt, infos) {
		ev := newResultJSON(resp.Result)
		ev.ModelID = infos[resp.Index].ID
		if resp.Error != nil {
			ev.Error = resp.Error.Error()
			ev.Timeout = resp.IsTimeout
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", ev.ModelID, resp.Error)
			}
		}
		results[resp.Index] = resp.Result
		s.publish("result", ev, topic)
	}

	if firstErr != nil {
		s.publish("failed", errorResponse{Error: firstErr.Error()}, topic)
		s.writeError(w, r, firstErr)
		return
	}

	cmp := orchestrator.Summarize(prompt, results)
	out := comparisonJSON{
		Prompt:       cmp.Prompt,
		Results:      make([]resultJSON, len(cmp.Results)),
		Timestamp:    cmp.Timestamp,
		MaxLatencyMs: cmp.MaxLatency.Milliseconds(),
		MaxTokens:    cmp.MaxTokens,
		MaxCost:      cmp.MaxCost,
		FastestID:    cmp.FastestID,
		CheapestID:   cmp.CheapestID,
	}
	for i, res := range cmp.Results {
		out.Results[i] = newResultJSON(res)
	}

	s.publish("done", out, topic)
	writeJSON(w, http.StatusOK, out)
}

// Labels shown in place of model ids until a battle is voted on.
var blindLabels = [2]string{"Model A", "Model B"}

type battleJSON struct {
	ID        string         `json:"id"`
	Prompt    string         `json:"prompt"`
	Models    [2]string      `json:"models"`
	Responses [2]resultJSON  `json:"responses"`
	CreatedAt time.Time      `json:"createdAt"`
	Voted     bool           `json:"voted"`
	Draw      bool           `json:"draw"`
	WinnerID  string         `json:"winnerId,omitempty"`
	Ratings   rating.Ratings `json:"ratings,omitempty"`
}

// newBattleJSON hides which model produced which response until the battle
// has been voted on.
func newBattleJSON(b arena.Battle) battleJSON {
	out := battleJSON{
		ID:        b.ID,
		Prompt:    b.Prompt,
		Models:    b.Models,
		CreatedAt: b.CreatedAt,
		Voted:     b.Voted,
		Draw:      b.Draw,
		WinnerID:  b.WinnerID,
	}
	if !b.Voted {
		out.Models = blindLabels
	}
	for i, resp := range b.Responses {
		out.Responses[i] = resultJSON{
			ModelID:    out.Models[i],
			Content:    resp.Content,
			LatencyMs:  resp.Latency.Milliseconds(),
			TokenCount: resp.TokenCount,
			Cost:       resp.Cost,
		}
	}
	return out
}

type startBattleRequest struct {
	Prompt string `json:"prompt"`
	ModelA string `json:"modelA"`
	ModelB string `json:"modelB"`
}

func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	var req startBattleRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.deps.Arena.Start(r.Context(), req.Prompt, req.ModelA, req.ModelB)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := newBattleJSON(b)
	s.publish("battle", out, battlesSSETopic)
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	battles := s.deps.Arena.Battles()
	out := make([]battleJSON, len(battles))
	for i, b := range battles {
		out[i] = newBattleJSON(b)
	}
	writeJSON(w, http.StatusOK, out)
}

type voteRequest struct {
	// Side is "a" or "b". ModelID may be given instead.
	Side    string `json:"side"`
	ModelID string `json:"modelId"`
	Draw    bool   `json:"draw"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	var (
		b       arena.Battle
		ratings rating.Ratings
		err     error
	)
	if req.Draw {
		b, ratings, err = s.deps.Arena.Draw(id)
	} else {
		modelID := req.ModelID
		if modelID == "" {
			modelID, err = s.sideModel(id, req.Side)
		}
		if err == nil {
			b, ratings, err = s.deps.Arena.Vote(id, modelID)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := newBattleJSON(b)
	out.Ratings = ratings
	s.publish("vote", out, battlesSSETopic)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sideModel(battleID, side string) (string, error) {
	b, err := s.deps.Arena.Battle(battleID)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "a":
		return b.Models[0], nil
	case "b":
		return b.Models[1], nil
	}
	return "", fmt.Errorf("%w: side must be a or b", errBadRequest)
}

func (s *Server) handleRankings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Arena.Ladder().Leaderboard())
}

// handleResetRankings puts every rating back to its starting value.
func (s *Server) handleResetRankings(w http.ResponseWriter, _ *http.Request) {
	ladder := s.deps.Arena.Ladder()
	ladder.Reset()
	board := ladder.Leaderboard()
	s.logger.Info("Rankings reset")
	s.publish("rankings_reset", board, battlesSSETopic)
	writeJSON(w, http.StatusOK, board)
}

type createConversationRequest struct {
	Title  string   `json:"title"`
	Models []string `json:"models"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	conv, err := s.deps.Session.CreateConversation(req.Title, req.Models)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleConversations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Session.Conversations())
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.deps.Session.Conversation(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.deps.Session.AskIn(r.Context(), r.PathValue("id"), req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	conv, err := s.deps.Session.Conversation(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	content, err := export.Render(conv, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(conv, format)))
	if _, err := w.Write(content); err != nil {
		s.logger.Warn("Failed to write export", slog.String(errLoggerKey, err.Error()))
	}
}

type feedbackResponse struct {
	ID int64 `json:"id"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feedback == nil {
		s.writeError(w, r, errNoFeedbackStore)
		return
	}
	var f db.Feedback
	if err := decode(w, r, &f); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.deps.Feedback.AddFeedback(f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, feedbackResponse{ID: id})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feedback == nil {
		s.writeError(w, r, errNoFeedbackStore)
		return
	}
	items, err := s.deps.Feedback.ListFeedback()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []db.Feedback{}
	}
	writeJSON(w, http.StatusOK, items)
}
