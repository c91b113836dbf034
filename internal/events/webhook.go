// Package events posts arena activity to an external webhook. Delivery is
// fire and forget: a slow or missing receiver never blocks a vote.
package events

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"modelarena/internal/arena"
	"modelarena/internal/rating"
)

const (
	EventBattleStarted = "battle_started"
	EventVoteCast      = "vote_cast"

	source = "modelarena"
)

// Event is the JSON body posted to the webhook.
type Event struct {
	Type      string            `json:"type"`
	Source    string            `json:"source"`
	Timestamp int64             `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// Webhook delivers events to one endpoint.
type Webhook struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewWebhook creates a notifier posting to endpoint.
func NewWebhook(endpoint string, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
		logger: logger.With(slog.String("module", "events")),
	}
}

// Emit sends an event asynchronously.
func (w *Webhook) Emit(eventType string, data map[string]string) {
	event := Event{
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.send(event)
	}()
}

// Wait blocks until every emitted event has been delivered or dropped.
func (w *Webhook) Wait() {
	w.wg.Wait()
}

func (w *Webhook) send(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		w.logger.Warn("marshal event", slog.String("type", event.Type), slog.Any("error", err))
		return
	}

	resp, err := w.httpClient.Post(w.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		// Receivers come and go; an unreachable endpoint is not worth a warning.
		w.logger.Debug("deliver event", slog.String("type", event.Type), slog.Any("error", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		w.logger.Warn("event rejected", slog.String("type", event.Type), slog.Int("status", resp.StatusCode))
	}
}

// BattleStarted announces a new battle without revealing its answers.
func (w *Webhook) BattleStarted(b arena.Battle) {
	w.Emit(EventBattleStarted, map[string]string{
		"battle_id": b.ID,
		"model_a":   b.Models[0],
		"model_b":   b.Models[1],
		"prompt":    truncate(b.Prompt, 200),
	})
}

// VoteCast reports the outcome of a battle and the ratings it produced.
func (w *Webhook) VoteCast(b arena.Battle, ratings rating.Ratings) {
	data := map[string]string{
		"battle_id": b.ID,
		"draw":      strconv.FormatBool(b.Draw),
	}
	if b.WinnerID != "" {
		data["winner"] = b.WinnerID
	}
	for _, id := range b.Models {
		data["rating_"+id] = strconv.Itoa(ratings[id])
	}
	w.Emit(EventVoteCast, data)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
