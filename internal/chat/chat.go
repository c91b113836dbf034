// Package chat keeps multi-model conversations: each user prompt is fanned
// out to the conversation's models and the answers are stored as a single
// assistant turn.
package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultTitle is used until the first prompt names the conversation.
const DefaultTitle = "New Conversation"

const titleLen = 50

// ModelResponse is one model's answer inside an assistant turn.
type ModelResponse struct {
	ModelID    string        `json:"modelId"`
	Content    string        `json:"content"`
	Latency    time.Duration `json:"latency"`
	TokenCount int           `json:"tokenCount"`
	Cost       float64       `json:"cost"`
}

// Message is one turn in a conversation. Assistant turns carry one response
// per queried model.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Responses []ModelResponse `json:"responses,omitempty"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Cost sums the cost of every response in the message.
func (m Message) Cost() float64 {
	var total float64
	for _, r := range m.Responses {
		total += r.Cost
	}
	return total
}

// Conversation is an append-only list of messages exchanged with a fixed
// set of models.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Models    []string  `json:"models"`
	Messages  []Message `json:"messages"`
}

// clone returns a copy that shares no slices with c.
func (c *Conversation) clone() Conversation {
	out := *c
	out.Models = append([]string(nil), c.Models...)
	out.Messages = append([]Message(nil), c.Messages...)
	return out
}

// Cost sums the cost of every assistant turn.
func (c Conversation) Cost() float64 {
	var total float64
	for _, m := range c.Messages {
		total += m.Cost()
	}
	return total
}

// conversationID derives an id from the creation time.
func conversationID(t time.Time) string {
	return fmt.Sprintf("conv-%d", t.UnixMilli())
}

// TitleFrom derives a conversation title from a prompt.
func TitleFrom(prompt string) string {
	r := []rune(prompt)
	if len(r) <= titleLen {
		return prompt
	}
	return string(r[:titleLen]) + "..."
}
