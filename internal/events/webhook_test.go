package events

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"modelarena/internal/arena"
	"modelarena/internal/rating"
)

// receiver collects every event posted to it.
type receiver struct {
	mu     sync.Mutex
	events []Event
	status int
}

func (r *receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	var e Event
	if err := json.Unmarshal(body, &e); err == nil {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	}
	if r.status != 0 {
		w.WriteHeader(r.status)
	}
}

func (r *receiver) received() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestEmitSendsPayload(t *testing.T) {
	rcv := &receiver{}
	server := httptest.NewServer(rcv)
	defer server.Close()

	w := NewWebhook(server.URL, nil)
	before := time.Now().Unix()
	w.Emit("test_event", map[string]string{"foo": "bar"})
	w.Wait()

	got := rcv.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	e := got[0]
	if e.Type != "test_event" {
		t.Errorf("expected type %q, got %q", "test_event", e.Type)
	}
	if e.Source != "modelarena" {
		t.Errorf("expected source modelarena, got %q", e.Source)
	}
	if e.Timestamp < before {
		t.Errorf("timestamp %d is before emit time %d", e.Timestamp, before)
	}
	if e.Data["foo"] != "bar" {
		t.Errorf("expected data[foo]=bar, got %q", e.Data["foo"])
	}
}

func TestBattleStarted(t *testing.T) {
	rcv := &receiver{}
	server := httptest.NewServer(rcv)
	defer server.Close()

	w := NewWebhook(server.URL, nil)
	w.BattleStarted(arena.Battle{
		ID:     "battle-1",
		Prompt: strings.Repeat("x", 250),
		Models: [2]string{"gpt-4", "command-r"},
	})
	w.Wait()

	got := rcv.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	e := got[0]
	if e.Type != EventBattleStarted {
		t.Errorf("expected %q, got %q", EventBattleStarted, e.Type)
	}
	if e.Data["model_a"] != "gpt-4" || e.Data["model_b"] != "command-r" {
		t.Errorf("unexpected models in %v", e.Data)
	}
	if p := e.Data["prompt"]; len(p) != 200 || !strings.HasSuffix(p, "...") {
		t.Errorf("expected prompt truncated to 200 chars, got %d", len(p))
	}
}

func TestVoteCast(t *testing.T) {
	rcv := &receiver{}
	server := httptest.NewServer(rcv)
	defer server.Close()

	w := NewWebhook(server.URL, nil)
	b := arena.Battle{ID: "battle-2", Models: [2]string{"gpt-4", "command-r"}, Voted: true, WinnerID: "gpt-4"}
	w.VoteCast(b, rating.Ratings{"gpt-4": 1805, "command-r": 1495})
	w.Wait()

	got := rcv.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	data := got[0].Data
	if data["winner"] != "gpt-4" || data["draw"] != "false" {
		t.Errorf("unexpected outcome in %v", data)
	}
	if data["rating_gpt-4"] != "1805" || data["rating_command-r"] != "1495" {
		t.Errorf("unexpected ratings in %v", data)
	}
}

func TestEmitToUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	w := NewWebhook(url, nil)
	w.Emit("test_event", nil)

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("delivery to a closed endpoint did not give up")
	}
}

func TestEmitRejected(t *testing.T) {
	rcv := &receiver{status: http.StatusBadRequest}
	server := httptest.NewServer(rcv)
	defer server.Close()

	w := NewWebhook(server.URL, nil)
	w.Emit("test_event", nil)
	w.Wait()

	if len(rcv.received()) != 1 {
		t.Error("expected the rejected event to reach the receiver")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
