// Package session keeps the authentication state in durable storage.
//
// A session is authenticated exactly when an identity token is stored. The
// decoded user is cached in memory and in the "user" key so it survives
// restarts even when the token can no longer be decoded.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tasktrack/internal/domain"
	"tasktrack/internal/storage"
	"tasktrack/internal/token"
)

const (
	KeyIDToken      = "id_token"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the part of the backend client the store delegates to.
type AuthAPI interface {
	Login(ctx context.Context, in domain.Credentials) (domain.AuthTokens, error)
	Register(ctx context.Context, in domain.Profile) (domain.Registration, error)
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

type Store struct {
	kv     storage.KV
	auth   AuthAPI
	logger *slog.Logger

	mu   sync.RWMutex
	user *domain.User
}

func New(kv storage.KV, auth AuthAPI, opts ...Option) *Store {
	s := &Store{kv: kv, auth: auth, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAuth replaces the backend used by Login and Register.
func (s *Store) SetAuth(auth AuthAPI) {
	s.auth = auth
}

// Restore loads the user for an existing session.
func (s *Store) Restore(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, KeyIDToken)
	if errors.Is(err, storage.ErrNotFound) {
		s.setUser(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read identity token: %w", err)
	}
	if u := token.ExtractUser(raw); u != nil {
		s.setUser(u)
		return nil
	}
	cached, err := s.kv.Get(ctx, KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		s.setUser(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cached user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(cached), &u); err != nil {
		s.logger.Warn("ignoring malformed cached user", "error", err)
		s.setUser(nil)
		return nil
	}
	s.setUser(&u)
	return nil
}

// IsAuthenticated reports whether an identity token is stored. Expiry is not checked.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.IDToken(ctx)
	return ok
}

// User returns the cached user. It may be nil while authenticated.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// IDToken returns the stored identity token.
func (s *Store) IDToken(ctx context.Context) (string, bool) {
	raw, err := s.kv.Get(ctx, KeyIDToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("read identity token", "error", err)
		}
		return "", false
	}
	return raw, raw != ""
}

// Expired reports whether the stored identity token is past its exp claim.
// An anonymous session counts as expired.
func (s *Store) Expired(ctx context.Context) bool {
	raw, ok := s.IDToken(ctx)
	if !ok {
		return true
	}
	return token.IsExpired(raw)
}

// Login authenticates against the backend and persists the issued tokens.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error) {
	tokens, err := s.auth.Login(ctx, creds)
	if err != nil {
		return domain.AuthTokens{}, err
	}
	writes := []struct{ key, value string }{
		{KeyIDToken, tokens.IDToken},
		{KeyAccessToken, tokens.AccessToken},
		{KeyRefreshToken, tokens.RefreshToken},
	}
	for _, w := range writes {
		if err := s.kv.Set(ctx, w.key, w.value); err != nil {
			return domain.AuthTokens{}, fmt.Errorf("store %s: %w", w.key, err)
		}
	}

	u := token.ExtractUser(tokens.IDToken)
	if u == nil {
		if err := s.kv.Remove(ctx, KeyUser); err != nil {
			return domain.AuthTokens{}, fmt.Errorf("clear cached user: %w", err)
		}
		s.setUser(nil)
		return tokens, nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return domain.AuthTokens{}, err
	}
	if err := s.kv.Set(ctx, KeyUser, string(b)); err != nil {
		return domain.AuthTokens{}, fmt.Errorf("store user: %w", err)
	}
	s.setUser(u)
	return tokens, nil
}

// Register creates an account. The session is left unchanged.
func (s *Store) Register(ctx context.Context, profile domain.Profile) (domain.Registration, error) {
	return s.auth.Register(ctx, profile)
}

// Logout removes every session key. Calling it on an anonymous session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyIDToken, KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	s.setUser(nil)
	return errors.Join(errs...)
}
