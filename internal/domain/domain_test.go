package domain

import (
	"encoding/json"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"to_do":       StatusTodo,
		"todo":        StatusTodo,
		" TODO ":      StatusTodo,
		"in_progress": StatusInProgress,
		"in-progress": StatusInProgress,
		"completed":   StatusCompleted,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestTaskStatusDecodesAlias(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":"1","title":"a","status":"todo"}`), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.Status != StatusTodo {
		t.Fatalf("expected %q, got %q", StatusTodo, task.Status)
	}
	if err := json.Unmarshal([]byte(`{"status":"archived"}`), &task); err != nil {
		t.Fatalf("unmarshal unknown: %v", err)
	}
	if task.Status != "archived" || task.Status.Label() != "Unknown" {
		t.Fatalf("unknown status not kept verbatim: %q", task.Status)
	}
}

func TestTaskUpdateOmitsNilFields(t *testing.T) {
	st := StatusCompleted
	b, err := json.Marshal(TaskUpdate{Status: &st})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"status":"completed"}` {
		t.Fatalf("unexpected body %s", b)
	}
	if !(TaskUpdate{}).Empty() {
		t.Fatalf("zero update should be empty")
	}
}

func TestTaskCreateFieldErrors(t *testing.T) {
	errs := TaskCreate{Title: "  ", Description: "\t"}.FieldErrors()
	if errs["title"] != "Title is required" || errs["description"] != "Description is required" {
		t.Fatalf("unexpected errors %v", errs)
	}
	if errs := (TaskCreate{Title: "a", Description: "b"}).FieldErrors(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestDisplayDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-05T10:00:00Z":       "Mar 5, 2024",
		"2024-03-05T10:00:00.123456": "Mar 5, 2024",
		"2024-03-05":                 "Mar 5, 2024",
		"yesterday":                  "yesterday",
	}
	for in, want := range cases {
		if got := DisplayDate(in); got != want {
			t.Fatalf("DisplayDate(%q) = %q, want %q", in, got, want)
		}
	}
}
