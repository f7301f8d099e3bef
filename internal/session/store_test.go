package session

import (
	"context"
	"sort"
	"testing"

	"tasktrack/internal/api"
	"tasktrack/internal/domain"
	"tasktrack/internal/storage"
	"tasktrack/internal/testutil"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	kv := storage.NewMemory()
	s := New(kv, nil)
	s.SetAuth(api.New(backend.URL(), s))
	return s, kv, backend
}

func TestLoginPersistsTokensAndUser(t *testing.T) {
	s, kv, backend := newTestStore(t)
	ctx := context.Background()
	userID := backend.SeedUser("ada@example.com", "secret", "Ada")

	if s.IsAuthenticated(ctx) {
		t.Fatalf("fresh store should be anonymous")
	}
	tokens, err := s.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !s.IsAuthenticated(ctx) {
		t.Fatalf("expected authenticated after login")
	}
	for key, want := range map[string]string{
		KeyIDToken:      tokens.IDToken,
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
	} {
		got, err := kv.Get(ctx, key)
		if err != nil || got != want {
			t.Fatalf("%s = %q, %v; want %q", key, got, err, want)
		}
	}
	u := s.User()
	if u == nil || u.UserID != userID || u.Email != "ada@example.com" || u.Name != "Ada" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := kv.Get(ctx, KeyUser); err != nil {
		t.Fatalf("user record not cached: %v", err)
	}
	if s.Expired(ctx) {
		t.Fatalf("fresh token should not be expired")
	}
}

func TestLoginFailureLeavesSessionAnonymous(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Login(ctx, domain.Credentials{Email: "nobody@example.com", Password: "x"})
	if api.StatusCode(err) != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
	if s.IsAuthenticated(ctx) || len(kv.Keys()) != 0 {
		t.Fatalf("failed login must not write state: %v", kv.Keys())
	}
}

func TestLoginWithUndecodableToken(t *testing.T) {
	s, kv, backend := newTestStore(t)
	ctx := context.Background()
	backend.SeedUser("ada@example.com", "secret", "Ada")
	backend.IDTokenOverride = "not-a-jwt"
	_ = kv.Set(ctx, KeyUser, `{"user_id":"stale"}`)

	if _, err := s.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !s.IsAuthenticated(ctx) {
		t.Fatalf("tokens should stay persisted")
	}
	if s.User() != nil {
		t.Fatalf("user should be nil, got %+v", s.User())
	}
	if _, err := kv.Get(ctx, KeyUser); err != storage.ErrNotFound {
		t.Fatalf("stale user record should be removed, got %v", err)
	}
	if !s.Expired(ctx) {
		t.Fatalf("undecodable token counts as expired")
	}
}

func TestLogoutClearsAllKeys(t *testing.T) {
	s, kv, backend := newTestStore(t)
	ctx := context.Background()
	backend.SeedUser("ada@example.com", "secret", "Ada")
	if _, err := s.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	keys := kv.Keys()
	sort.Strings(keys)
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys after login, got %v", keys)
	}

	for i := 0; i < 2; i++ {
		if err := s.Logout(ctx); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
		if s.IsAuthenticated(ctx) || s.User() != nil || len(kv.Keys()) != 0 {
			t.Fatalf("logout %d left state behind: %v", i, kv.Keys())
		}
	}
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()
	reg, err := s.Register(ctx, domain.Profile{Email: "new@example.com", Password: "pw", Name: "New"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.UserID == "" {
		t.Fatalf("expected user id, got %+v", reg)
	}
	if s.IsAuthenticated(ctx) || len(kv.Keys()) != 0 {
		t.Fatalf("register must not change the session")
	}
}

func TestRestore(t *testing.T) {
	backend := testutil.NewBackend(t)
	ctx := context.Background()

	t.Run("from token", func(t *testing.T) {
		kv := storage.NewMemory()
		_ = kv.Set(ctx, KeyIDToken, backend.Mint("u1", "ada@example.com", ""))
		s := New(kv, nil)
		if err := s.Restore(ctx); err != nil {
			t.Fatalf("restore: %v", err)
		}
		if u := s.User(); u == nil || u.UserID != "u1" || u.Name != "User" {
			t.Fatalf("unexpected user %+v", u)
		}
	})

	t.Run("falls back to cached user", func(t *testing.T) {
		kv := storage.NewMemory()
		_ = kv.Set(ctx, KeyIDToken, "garbage")
		_ = kv.Set(ctx, KeyUser, `{"user_id":"u2","email":"b@example.com","name":"Bea"}`)
		s := New(kv, nil)
		if err := s.Restore(ctx); err != nil {
			t.Fatalf("restore: %v", err)
		}
		if u := s.User(); u == nil || u.UserID != "u2" || u.Name != "Bea" {
			t.Fatalf("unexpected user %+v", u)
		}
	})

	t.Run("malformed cached user ignored", func(t *testing.T) {
		kv := storage.NewMemory()
		_ = kv.Set(ctx, KeyIDToken, "garbage")
		_ = kv.Set(ctx, KeyUser, `{not json`)
		s := New(kv, nil)
		if err := s.Restore(ctx); err != nil {
			t.Fatalf("restore: %v", err)
		}
		if s.User() != nil || !s.IsAuthenticated(ctx) {
			t.Fatalf("expected authenticated with nil user")
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		s := New(storage.NewMemory(), nil)
		if err := s.Restore(ctx); err != nil {
			t.Fatalf("restore: %v", err)
		}
		if s.User() != nil || s.IsAuthenticated(ctx) {
			t.Fatalf("expected anonymous")
		}
	})
}

func TestBearerFollowsSession(t *testing.T) {
	s, _, backend := newTestStore(t)
	ctx := context.Background()
	backend.SeedUser("ada@example.com", "secret", "Ada")
	client := api.New(backend.URL(), s)

	if _, err := client.ListTasks(ctx); api.StatusCode(err) != 401 {
		t.Fatalf("anonymous list should be 401, got %v", err)
	}
	if _, err := s.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := client.ListTasks(ctx); err != nil {
		t.Fatalf("authed list: %v", err)
	}
	_ = s.Logout(ctx)
	reqs := backend.Requests()
	if _, err := client.ListTasks(ctx); api.StatusCode(err) != 401 {
		t.Fatalf("list after logout should be 401, got %v", err)
	}
	if got := backend.Requests()[len(reqs)].Authorization; got != "" {
		t.Fatalf("no header expected after logout, got %q", got)
	}
}
