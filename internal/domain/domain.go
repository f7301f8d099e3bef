package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "to_do"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses returns the fixed status order used for forms and aggregation.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusCompleted}
}

// ParseStatus accepts the wire values plus the "todo" spelling.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "to_do", "todo", "to-do":
		return StatusTodo, nil
	case "in_progress", "in-progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status %q (want to_do, in_progress or completed)", s)
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// UnmarshalText normalizes known spellings and keeps unknown values verbatim.
func (s *Status) UnmarshalText(b []byte) error {
	if st, err := ParseStatus(string(b)); err == nil {
		*s = st
		return nil
	}
	*s = Status(b)
	return nil
}

type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      Status  `json:"status" enum:"to_do,in_progress,completed"`
	UserID      string  `json:"user_id"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
	UpdatedAt   *string `json:"updated_at,omitempty" format:"date-time"`
}

type TaskCreate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

type DeleteResult struct {
	Message string `json:"message"`
}

type User struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Profile struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Registration struct {
	Message string `json:"message,omitempty"`
	UserID  string `json:"user_id"`
}

type AuthTokens struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// FieldErrors runs the presence checks on the trimmed title and description.
// The result is empty when the task can be sent.
func (t TaskCreate) FieldErrors() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(t.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(t.Description) == "" {
		errs["description"] = "Description is required"
	}
	return errs
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DisplayDate renders a backend timestamp as "Jan 2, 2006", or returns it
// unchanged when it does not parse.
func DisplayDate(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return ts
}
