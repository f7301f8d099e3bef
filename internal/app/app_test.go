package app

import (
	"context"
	"testing"

	"tasktrack/internal/config"
	"tasktrack/internal/domain"
	"tasktrack/internal/testutil"
)

func TestOpenMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	a, err := Open(context.Background(), t.TempDir(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	if a.Session.IsAuthenticated(context.Background()) {
		t.Fatalf("fresh memory app should be anonymous")
	}
	if a.API.BaseURL != config.DefaultBaseURL {
		t.Fatalf("unexpected base url %s", a.API.BaseURL)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "etcd"
	if _, err := Open(context.Background(), t.TempDir(), cfg, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	backend := testutil.NewBackend(t)
	userID := backend.SeedUser("ada@example.com", "secret", "Ada")
	dir := t.TempDir()
	cfg := config.Default()
	cfg.API.BaseURL = backend.URL()
	ctx := context.Background()

	a, err := Open(ctx, dir, cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := a.Session.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := a.API.CreateTask(ctx, domain.TaskCreate{Title: "t", Description: "d", Status: domain.StatusTodo}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := Open(ctx, dir, cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if !b.Session.IsAuthenticated(ctx) {
		t.Fatalf("session lost across reopen")
	}
	if u := b.Session.User(); u == nil || u.UserID != userID {
		t.Fatalf("unexpected restored user %+v", u)
	}
	tasks, err := b.API.ListTasks(ctx)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("list after reopen: %v %v", tasks, err)
	}
}
