// Package testutil provides an in-memory stand-in for the task backend.
package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tasktrack/internal/domain"
)

// Request is one call the backend received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

type account struct {
	ID       string
	Email    string
	Password string
	Name     string
}

type failure struct {
	method string
	prefix string
	status int
}

// Backend mimics the REST API: /auth/register, /auth/login and /tasks CRUD,
// scoped to the user named by the bearer token.
type Backend struct {
	Server   *httptest.Server
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time

	// IDTokenOverride, when set, replaces the id_token handed out at login.
	IDTokenOverride string

	mu       sync.Mutex
	accounts map[string]account
	tasks    map[string]domain.Task
	order    []string
	requests []Request
	failures []failure
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		Secret:   []byte("testutil-secret"),
		TokenTTL: time.Hour,
		Now:      time.Now,
		accounts: make(map[string]account),
		tasks:    make(map[string]domain.Task),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Post("/auth/register", b.register)
	r.Post("/auth/login", b.login)
	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/tasks", b.listTasks)
		r.Post("/tasks", b.createTask)
		r.Get("/tasks/{id}", b.getTask)
		r.Put("/tasks/{id}", b.updateTask)
		r.Delete("/tasks/{id}", b.deleteTask)
	})
	return r
}

// Fail makes every later request with method and a path starting with prefix
// answer status.
func (b *Backend) Fail(method, prefix string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method: method, prefix: prefix, status: status})
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests matched method and path exactly.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// SeedUser registers an account directly and returns its id.
func (b *Backend) SeedUser(email, password, name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	b.accounts[strings.ToLower(email)] = account{ID: id, Email: email, Password: password, Name: name}
	return id
}

// SeedTask stores a task for userID without going through HTTP.
func (b *Backend) SeedTask(userID, title, description string, status domain.Status) domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := domain.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   b.Now().UTC().Format(time.RFC3339),
	}
	b.tasks[t.ID] = t
	b.order = append(b.order, t.ID)
	return t
}

// Task returns the stored task with id.
func (b *Backend) Task(id string) (domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	return t, ok
}

// Mint signs an identity token for the given account fields.
func (b *Backend) Mint(userID, email, name string) string {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   b.Now().Add(b.TokenTTL).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
	if err != nil {
		panic(err)
	}
	return signed
}

type userKey struct{}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		var forced int
		for _, f := range b.failures {
			if f.method == r.Method && strings.HasPrefix(r.URL.Path, f.prefix) {
				forced = f.status
			}
		}
		b.mu.Unlock()
		if forced != 0 {
			writeError(w, forced, "forced failure", "forced")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "User not authenticated", "unauthorized")
			return
		}
		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(b.Now))
		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return b.Secret, nil }); err != nil {
			writeError(w, http.StatusUnauthorized, "User not authenticated", "unauthorized")
			return
		}
		sub, _ := claims.GetSubject()
		next.ServeHTTP(w, r.WithContext(withUser(r, sub)))
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" || in.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "email, password and name are required", "validation_error")
		return
	}
	b.mu.Lock()
	if _, exists := b.accounts[strings.ToLower(in.Email)]; exists {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "Email is already registered", "user_exists")
		return
	}
	id := uuid.NewString()
	b.accounts[strings.ToLower(in.Email)] = account{ID: id, Email: in.Email, Password: in.Password, Name: in.Name}
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, domain.Registration{Message: "User registered successfully", UserID: id})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body", "validation_error")
		return
	}
	b.mu.Lock()
	acct, ok := b.accounts[strings.ToLower(in.Email)]
	b.mu.Unlock()
	if !ok || acct.Password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", "invalid_credentials")
		return
	}
	idToken := b.IDTokenOverride
	if idToken == "" {
		idToken = b.Mint(acct.ID, acct.Email, acct.Name)
	}
	writeJSON(w, http.StatusOK, domain.AuthTokens{
		IDToken:      idToken,
		AccessToken:  "access-" + uuid.NewString(),
		RefreshToken: "refresh-" + uuid.NewString(),
		ExpiresIn:    int(b.TokenTTL.Seconds()),
	})
}

func (b *Backend) listTasks(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)
	b.mu.Lock()
	out := []domain.Task{}
	for _, id := range b.order {
		if t, ok := b.tasks[id]; ok && t.UserID == userID {
			out = append(out, t)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := b.ownedTask(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found", "task_not_found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) createTask(w http.ResponseWriter, r *http.Request) {
	var in domain.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required", "validation_error")
		return
	}
	if in.Status == "" {
		in.Status = domain.StatusTodo
	}
	t := b.SeedTask(userFrom(r), in.Title, in.Description, in.Status)
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) updateTask(w http.ResponseWriter, r *http.Request) {
	var in domain.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body", "validation_error")
		return
	}
	t, ok := b.ownedTask(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found", "task_not_found")
		return
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	now := b.Now().UTC().Format(time.RFC3339)
	t.UpdatedAt = &now
	b.mu.Lock()
	b.tasks[t.ID] = t
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) deleteTask(w http.ResponseWriter, r *http.Request) {
	t, ok := b.ownedTask(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found", "task_not_found")
		return
	}
	b.mu.Lock()
	delete(b.tasks, t.ID)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.DeleteResult{Message: "Task deleted successfully"})
}

func (b *Backend) ownedTask(r *http.Request) (domain.Task, bool) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok || t.UserID != userFrom(r) {
		return domain.Task{}, false
	}
	return t, true
}

func withUser(r *http.Request, userID string) context.Context {
	return context.WithValue(r.Context(), userKey{}, userID)
}

func userFrom(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, map[string]string{"message": message, "error_code": code})
}
