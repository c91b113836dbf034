package db

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyFeedback = errors.New("feedback content is empty")
	ErrFeedbackType  = errors.New("feedback type must be bug, feature or other")
)

// Feedback types accepted by AddFeedback.
const (
	FeedbackBug     = "bug"
	FeedbackFeature = "feature"
	FeedbackOther   = "other"
)

type Feedback struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateFeedback normalizes f and checks its type and content.
func ValidateFeedback(f *Feedback) error {
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	f.Content = strings.TrimSpace(f.Content)

	switch f.Type {
	case FeedbackBug, FeedbackFeature, FeedbackOther:
	default:
		return fmt.Errorf("%w: %q", ErrFeedbackType, f.Type)
	}
	if f.Content == "" {
		return ErrEmptyFeedback
	}
	return nil
}

// AddFeedback validates and stores f, returning its id.
func (s *Store) AddFeedback(f Feedback) (int64, error) {
	if err := ValidateFeedback(&f); err != nil {
		return 0, err
	}

	result, err := s.db.Exec(
		`INSERT INTO feedback (type, content, user_id) VALUES (?, ?, ?)`,
		f.Type, f.Content, f.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListFeedback returns stored feedback, newest first.
func (s *Store) ListFeedback() ([]Feedback, error) {
	rows, err := s.db.Query(
		`SELECT id, type, content, COALESCE(user_id, ''), created_at FROM feedback ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.Type, &f.Content, &f.UserID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
