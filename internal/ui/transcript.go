// internal/ui/transcript.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"modelarena/internal/chat"
	"modelarena/internal/models"
)

// Entry is one block of the transcript.
type Entry struct {
	Source    string // model id, "user" or "system"
	Content   string
	Meta      string // latency/tokens/cost line under a model answer
	Timestamp time.Time
	IsError   bool
	IsTimeout bool
	Markdown  bool // render Content through glamour
}

// Transcript is the scrolling conversation pane plus per-model status.
type Transcript struct {
	Entries []Entry

	ModelStatus    map[string]models.ModelStatus
	ModelStartTime map[string]time.Time
	AnimationFrame int

	catalog  Catalog
	renderer *glamour.TermRenderer
	width    int
}

// Catalog looks up model descriptors for display.
type Catalog interface {
	Info(id string) (models.ModelInfo, bool)
}

func NewTranscript(catalog Catalog) *Transcript {
	return &Transcript{
		ModelStatus:    make(map[string]models.ModelStatus),
		ModelStartTime: make(map[string]time.Time),
		catalog:        catalog,
	}
}

// SetWidth rebuilds the markdown renderer for a new pane width.
func (t *Transcript) SetWidth(width int) {
	if width == t.width && t.renderer != nil {
		return
	}
	t.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		// Plain text fallback
		t.renderer = nil
		return
	}
	t.renderer = r
}

// UpdateModelStatus updates a model's status and tracks timing
func (t *Transcript) UpdateModelStatus(modelID string, status models.ModelStatus) {
	old := t.ModelStatus[modelID]
	t.ModelStatus[modelID] = status

	if status == models.StatusResponding && old != models.StatusResponding {
		t.ModelStartTime[modelID] = time.Now()
	}
	if status != models.StatusResponding && old == models.StatusResponding {
		delete(t.ModelStartTime, modelID)
	}
}

// Responding reports whether any model is generating.
func (t *Transcript) Responding() bool {
	for _, s := range t.ModelStatus {
		if s == models.StatusResponding {
			return true
		}
	}
	return false
}

// TickAnimation advances the streaming indicator animation
func (t *Transcript) TickAnimation() {
	t.AnimationFrame = (t.AnimationFrame + 1) % 4
}

func (t *Transcript) streamingIndicator() string {
	frames := []string{"", ".", "..", "..."}
	return frames[t.AnimationFrame]
}

// formatElapsedTime formats duration in a human-readable way
func formatElapsedTime(elapsed time.Duration) string {
	if elapsed < time.Second {
		return "<1s"
	}
	if elapsed < time.Minute {
		return fmt.Sprintf("%ds", int(elapsed.Seconds()))
	}
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", mins, secs)
}

func (t *Transcript) AddSystem(content string) {
	t.Entries = append(t.Entries, Entry{Source: "system", Content: content, Timestamp: time.Now()})
}

func (t *Transcript) AddError(source, content string, isTimeout bool) {
	t.Entries = append(t.Entries, Entry{
		Source:    source,
		Content:   content,
		Timestamp: time.Now(),
		IsError:   true,
		IsTimeout: isTimeout,
	})
}

// AddMessage appends a chat message; assistant turns become one entry per
// model.
func (t *Transcript) AddMessage(msg chat.Message) {
	if len(msg.Responses) == 0 {
		t.Entries = append(t.Entries, Entry{
			Source:    string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
		return
	}
	for _, r := range msg.Responses {
		t.Entries = append(t.Entries, Entry{
			Source:    r.ModelID,
			Content:   r.Content,
			Meta:      responseMeta(r.Latency, r.TokenCount, r.Cost),
			Timestamp: msg.Timestamp,
			Markdown:  true,
		})
	}
}

// Load replaces the transcript with a stored conversation.
func (t *Transcript) Load(conv chat.Conversation) {
	t.Entries = nil
	for _, m := range conv.Messages {
		t.AddMessage(m)
	}
}

func responseMeta(latency time.Duration, tokens int, cost float64) string {
	return fmt.Sprintf("%s · %d tokens · $%.4f", latency.Round(10*time.Millisecond), tokens, cost)
}

func (t *Transcript) sourceName(source string) string {
	switch source {
	case "user":
		return "You"
	case "system":
		return "System"
	case "assistant":
		return "Assistant"
	}
	if t.catalog != nil {
		if info, ok := t.catalog.Info(source); ok {
			return info.Name
		}
	}
	return source
}

func (t *Transcript) sourceStyle(source string) lipgloss.Style {
	switch source {
	case "user":
		return UserStyle
	case "system":
		return SystemStyle
	}
	if t.catalog != nil {
		if info, ok := t.catalog.Info(source); ok {
			return ProviderStyle(info.Provider)
		}
	}
	return lipgloss.NewStyle().Foreground(White)
}

func (t *Transcript) Render() string {
	var sb strings.Builder

	for _, e := range t.Entries {
		ts := e.Timestamp.Format("15:04")

		if e.IsError {
			kind := "Error"
			if e.IsTimeout {
				kind = "Timeout"
			}
			sb.WriteString(ErrorStyle.Render(fmt.Sprintf("[%s] %s %s:", ts, t.sourceName(e.Source), kind)))
		} else {
			sb.WriteString(t.sourceStyle(e.Source).Render(fmt.Sprintf("[%s] %s:", ts, t.sourceName(e.Source))))
		}
		sb.WriteString("\n")

		if e.Markdown && t.renderer != nil {
			if out, err := t.renderer.Render(e.Content); err == nil {
				sb.WriteString(strings.TrimRight(out, "\n"))
				sb.WriteString("\n")
			} else {
				writeIndented(&sb, e.Content, false)
			}
		} else {
			writeIndented(&sb, e.Content, e.IsError)
		}

		if e.Meta != "" {
			sb.WriteString("  ")
			sb.WriteString(DimStyle.Render(e.Meta))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeIndented(sb *strings.Builder, content string, isError bool) {
	for _, line := range strings.Split(content, "\n") {
		sb.WriteString("  ")
		if isError {
			sb.WriteString(ErrorStyle.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
}

// RenderModelStatus renders the model status sidebar
func (t *Transcript) RenderModelStatus(modelIDs []string) string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("MODELS"))
	sb.WriteString("\n\n")

	for _, id := range modelIDs {
		status := t.ModelStatus[id]
		name := t.sourceName(id)
		style := t.sourceStyle(id)

		line := fmt.Sprintf("%s %s", statusIndicator(status), style.Render(name))
		if status == models.StatusResponding {
			line = fmt.Sprintf("%s %s", statusIndicator(status), style.Render(name+t.streamingIndicator()))
			if start, ok := t.ModelStartTime[id]; ok {
				line += " " + DimStyle.Render(fmt.Sprintf("(%s)", formatElapsedTime(time.Since(start))))
			}
		}

		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

func statusIndicator(status models.ModelStatus) string {
	switch status {
	case models.StatusResponding:
		return StatusWarn.Render("●")
	case models.StatusWaiting:
		return DimStyle.Render("○")
	case models.StatusError:
		return StatusCrit.Render("✗")
	case models.StatusTimeout:
		return DimStyle.Render("◌")
	default: // Idle
		return StatusOK.Render("●")
	}
}

// TranscriptView wraps a transcript with a viewport for scrolling
type TranscriptView struct {
	Transcript *Transcript
	Viewport   viewport.Model
}

func NewTranscriptView(t *Transcript, width, height int) *TranscriptView {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.MouseWheelEnabled = true

	t.SetWidth(width)
	return &TranscriptView{
		Transcript: t,
		Viewport:   vp,
	}
}

func (v *TranscriptView) Resize(width, height int) {
	v.Viewport.Width = width
	v.Viewport.Height = height
	v.Transcript.SetWidth(width)
	v.Refresh()
}

func (v *TranscriptView) Refresh() {
	v.Viewport.SetContent(v.Transcript.Render())
	v.Viewport.GotoBottom()
}
