// Package web serves the browser front end: server-rendered pages over the
// task backend plus a small JSON API under /api.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tasktrack/internal/domain"
)

// Session is the authentication state the pages route on.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	User() *domain.User
	Expired(ctx context.Context) bool
	Login(ctx context.Context, in domain.Credentials) (domain.AuthTokens, error)
	Register(ctx context.Context, in domain.Profile) (domain.Registration, error)
	Logout(ctx context.Context) error
}

// Tasks is the backend surface the pages call.
type Tasks interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	CreateTask(ctx context.Context, in domain.TaskCreate) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, in domain.TaskUpdate) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) (domain.DeleteResult, error)
}

// Config for the browser handler.
type Config struct {
	Session Session
	Tasks   Tasks
	Logger  *slog.Logger
	// Addr is the listen address. Requests may name it or a loopback host.
	Addr string
}

type Server struct {
	session Session
	tasks   Tasks
	logger  *slog.Logger
	pages   pages
}

// New returns an HTTP handler exposing the pages and the JSON API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Session == nil || cfg.Tasks == nil {
		return nil, fmt.Errorf("web: session and tasks are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{session: cfg.Session, tasks: cfg.Tasks, logger: logger, pages: pages}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(withLogging(logger))
	router.Use(sameOrigin(cfg.Addr, logger))

	router.Get("/login", s.loginPage)
	router.Post("/login", s.login)
	router.Get("/register", s.registerPage)
	router.Post("/register", s.register)
	router.Post("/logout", s.logout)

	router.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.dashboard)
		r.Get("/tasks/new", s.newTaskPage)
		r.Post("/tasks", s.createTask)
		r.Post("/tasks/{id}/status", s.updateStatus)
		r.Get("/tasks/{id}/delete", s.confirmDelete)
		r.Post("/tasks/{id}/delete", s.deleteTask)
		r.Get("/chart", s.chart)
	})

	hcfg := huma.DefaultConfig("tasktrack", "1.0.0")
	hcfg.OpenAPIPath = "/api/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, "/api")
	registerHealth(group)
	registerSession(group, s.session)
	registerStats(group, s.session, s.tasks)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	return router, nil
}
