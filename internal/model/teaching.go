package model

import (
	"fmt"
	"time"
)

// FieldSelection is a user-designated span in an example's text, tagged with
// the field type the span represents. Indexes are byte offsets into the
// example body; EndIndex is exclusive.
type FieldSelection struct {
	Field      FieldType `json:"fieldType"`
	StartIndex int       `json:"startIndex"`
	EndIndex   int       `json:"endIndex"`
}

// Validate checks the selection against the body it was made in.
func (s FieldSelection) Validate(body string) error {
	if !s.Field.Valid() {
		return fmt.Errorf("unknown field type %q", s.Field)
	}
	if s.StartIndex < 0 || s.EndIndex > len(body) || s.StartIndex >= s.EndIndex {
		return fmt.Errorf("selection [%d,%d) out of range for body of length %d",
			s.StartIndex, s.EndIndex, len(body))
	}
	return nil
}

// Text returns the selected substring of body.
func (s FieldSelection) Text(body string) string {
	if s.StartIndex < 0 || s.EndIndex > len(body) || s.StartIndex > s.EndIndex {
		return ""
	}
	return body[s.StartIndex:s.EndIndex]
}

// TeachingExample is one user-labeled sample message. Immutable once created.
type TeachingExample struct {
	CreatedAt  time.Time        `json:"created_at"`
	ID         string           `json:"id"`
	SenderID   string           `json:"sender_id"`
	Body       string           `json:"body"`
	Category   Category         `json:"category,omitempty"`
	Selections []FieldSelection `json:"selections"`
}

// LearnedBankPattern is a persisted, reusable extraction template tied to
// one or more sender ids. The success/fail counters are advanced by callers
// after every match attempt.
type LearnedBankPattern struct {
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ID              string            `json:"id"`
	BankName        string            `json:"bank_name"`
	DefaultCategory Category          `json:"default_category,omitempty"`
	SenderIDs       []string          `json:"sender_ids"`
	Examples        []TeachingExample `json:"examples"`
	Pattern         InferredPattern   `json:"pattern"`
	SuccessCount    int               `json:"success_count"`
	FailCount       int               `json:"fail_count"`
	Enabled         bool              `json:"enabled"`
}

// RecordMatch returns the new counter values after one match attempt. The
// pattern itself is not mutated; persistence of the new values is the
// caller's job.
func (p LearnedBankPattern) RecordMatch(success bool) (successCount, failCount int) {
	if success {
		return p.SuccessCount + 1, p.FailCount
	}
	return p.SuccessCount, p.FailCount + 1
}

// SuccessRate returns the fraction of match attempts that succeeded, or 0
// when the pattern has never been tried.
func (p LearnedBankPattern) SuccessRate() float64 {
	total := p.SuccessCount + p.FailCount
	if total == 0 {
		return 0
	}
	return float64(p.SuccessCount) / float64(total)
}
