package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasktrack/internal/domain"
	"tasktrack/internal/testutil"
)

type staticTokens struct {
	token string
	calls int
}

func (s *staticTokens) IDToken(context.Context) (string, bool) {
	s.calls++
	return s.token, s.token != ""
}

func TestBearerAttachedOnlyWithToken(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := &staticTokens{}
	c := New(srv.URL, tokens)
	ctx := context.Background()
	if _, err := c.ListTasks(ctx); err != nil {
		t.Fatalf("list anonymous: %v", err)
	}
	tokens.token = "abc.def.ghi"
	if _, err := c.ListTasks(ctx); err != nil {
		t.Fatalf("list authed: %v", err)
	}
	if len(got) != 2 || got[0] != "" || got[1] != "Bearer abc.def.ghi" {
		t.Fatalf("unexpected headers %q", got)
	}
	if tokens.calls != 2 {
		t.Fatalf("token should be read per request, got %d reads", tokens.calls)
	}
}

func TestNilTokenSourceSendsNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization %q", h)
		}
		_, _ = w.Write([]byte(`{"message":"ok","user_id":"u1"}`))
	}))
	defer srv.Close()

	reg, err := New(srv.URL+"/", nil).Register(context.Background(), domain.Profile{Email: "a@b.c", Password: "pw", Name: "A"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.UserID != "u1" {
		t.Fatalf("unexpected registration %+v", reg)
	}
}

func TestTaskLifecycleAgainstBackend(t *testing.T) {
	backend := testutil.NewBackend(t)
	userID := backend.SeedUser("ada@example.com", "secret", "Ada")
	tokens := &staticTokens{token: backend.Mint(userID, "ada@example.com", "Ada")}
	c := New(backend.URL(), tokens)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, domain.TaskCreate{Title: "Write", Description: "docs", Status: domain.StatusTodo})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.UserID != userID || created.Status != domain.StatusTodo {
		t.Fatalf("unexpected created task %+v", created)
	}

	st := domain.StatusCompleted
	updated, err := c.UpdateTask(ctx, created.ID, domain.TaskUpdate{Status: &st})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.Title != "Write" || updated.UpdatedAt == nil {
		t.Fatalf("unexpected updated task %+v", updated)
	}
	reqs := backend.Requests()
	last := reqs[len(reqs)-1]
	if last.Method != http.MethodPut || last.Path != "/tasks/"+created.ID {
		t.Fatalf("update sent %s %s", last.Method, last.Path)
	}
	if last.Body != "{\"status\":\"completed\"}\n" {
		t.Fatalf("update body should be partial, got %q", last.Body)
	}

	got, err := c.GetTask(ctx, created.ID)
	if err != nil || got.Status != domain.StatusCompleted {
		t.Fatalf("get: %+v %v", got, err)
	}

	list, err := c.ListTasks(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %+v %v", list, err)
	}

	res, err := c.DeleteTask(ctx, created.ID)
	if err != nil || res.Message == "" {
		t.Fatalf("delete: %+v %v", res, err)
	}
	if _, err := c.GetTask(ctx, created.ID); StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := New(backend.URL(), nil)

	_, err := c.Login(context.Background(), domain.Credentials{Email: "nobody@example.com", Password: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "invalid_credentials" || apiErr.Message != "Invalid credentials" {
		t.Fatalf("unexpected error %+v", apiErr)
	}

	if _, err := c.ListTasks(context.Background()); StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("anonymous list should be 401, got %v", err)
	}
}

func TestAPIErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).ListTasks(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestTaskPathEscapesID(t *testing.T) {
	if got := taskPath("a/b c"); got != "tasks/a%2Fb%20c" {
		t.Fatalf("unexpected path %q", got)
	}
}
