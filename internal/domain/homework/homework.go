// internal/domain/homework/homework.go
package homework

import (
	"errors"
	"fmt"
)

// Status is the review state reported by the homework API.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

// ErrUnknownStatus means the API reported a status outside the verdict table.
var ErrUnknownStatus = errors.New("unknown homework status")

var verdicts = map[Status]string{
	StatusApproved:  "The work has been reviewed: the reviewer liked everything. Hooray!",
	StatusReviewing: "The work has been taken for review by the reviewer.",
	StatusRejected:  "The work has been reviewed: the reviewer has comments.",
}

// Homework is a single record from the "homeworks" list.
// Only Name and Status take part in notifications; the rest is logged.
type Homework struct {
	Name            string `json:"homework_name"`
	Status          Status `json:"status"`
	LessonName      string `json:"lesson_name,omitempty"`
	ReviewerComment string `json:"reviewer_comment,omitempty"`
	DateUpdated     string `json:"date_updated,omitempty"`
}

// Verdict returns the fixed notification text for a known status.
func Verdict(status Status) (string, error) {
	verdict, ok := verdicts[status]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, string(status))
	}
	return verdict, nil
}

// FormatStatusChange builds the message sent to the chat when a homework changes status.
func FormatStatusChange(h Homework) (string, error) {
	verdict, err := Verdict(h.Status)
	if err != nil {
		return "", fmt.Errorf("homework %q: %w", h.Name, err)
	}
	return fmt.Sprintf("Changed review status of \"%s\". %s", h.Name, verdict), nil
}
