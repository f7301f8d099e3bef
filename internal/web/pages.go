package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tasktrack/internal/api"
	"tasktrack/internal/domain"
	"tasktrack/internal/stats"
)

const (
	msgLoadFailed   = "Failed to load tasks. Please try again later."
	msgCreateFailed = "Failed to create task. Please try again."
	msgUpdateFailed = "Failed to update task. Please try again."
	msgDeleteFailed = "Failed to delete task. Please try again."
	msgRegistered   = "Registration successful. Please log in."
)

type authPage struct {
	page
	Name   string
	Email  string
	Errors map[string]string
}

type dashboardPage struct {
	page
	Tasks      []domain.Task
	LoadFailed bool
}

type taskFormPage struct {
	page
	Form   domain.TaskCreate
	Errors map[string]string
}

type confirmPage struct {
	page
	Task domain.Task
}

type chartPage struct {
	page
	Summary    stats.Summary
	Slices     []slice
	LoadFailed bool
}

func (s *Server) chrome(title string) page {
	return page{Title: title, Nav: true, User: s.session.User()}
}

// failureMessage prefers the backend's own message for auth forms.
func failureMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.session.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	p := authPage{page: page{Title: "Login"}}
	if r.URL.Query().Get("registered") != "" {
		p.Notice = msgRegistered
	}
	s.render(w, http.StatusOK, "login", p)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	creds := domain.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	p := authPage{page: page{Title: "Login"}, Email: creds.Email, Errors: map[string]string{}}
	if creds.Email == "" {
		p.Errors["email"] = "Email is required"
	}
	if creds.Password == "" {
		p.Errors["password"] = "Password is required"
	}
	if len(p.Errors) > 0 {
		s.render(w, http.StatusUnprocessableEntity, "login", p)
		return
	}
	if _, err := s.session.Login(r.Context(), creds); err != nil {
		p.Banner = failureMessage(err, "Login failed. Please check your credentials.")
		s.render(w, http.StatusUnauthorized, "login", p)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register", authPage{page: page{Title: "Register"}})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	profile := domain.Profile{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	p := authPage{page: page{Title: "Register"}, Name: profile.Name, Email: profile.Email, Errors: map[string]string{}}
	if profile.Name == "" {
		p.Errors["name"] = "Name is required"
	}
	if profile.Email == "" {
		p.Errors["email"] = "Email is required"
	}
	if profile.Password == "" {
		p.Errors["password"] = "Password is required"
	}
	if len(p.Errors) > 0 {
		s.render(w, http.StatusUnprocessableEntity, "register", p)
		return
	}
	if _, err := s.session.Register(r.Context(), profile); err != nil {
		p.Banner = failureMessage(err, "Registration failed. Please try again.")
		s.render(w, http.StatusBadGateway, "register", p)
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Logout(r.Context()); err != nil {
		s.logger.Error("logout", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, "")
}

// renderDashboard fetches the task list and shows it with an optional banner.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, banner string) {
	p := dashboardPage{page: s.chrome("Dashboard")}
	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		p.LoadFailed = true
		banner = joinBanners(banner, msgLoadFailed)
	}
	p.Tasks = tasks
	p.Banner = banner
	s.render(w, status, "dashboard", p)
}

func joinBanners(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

func (s *Server) newTaskPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "task_form", taskFormPage{
		page: s.chrome("New task"),
		Form: domain.TaskCreate{Status: domain.StatusTodo},
	})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := domain.TaskCreate{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Status:      domain.StatusTodo,
	}
	if raw := r.PostFormValue("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in.Status = st
	}
	p := taskFormPage{page: s.chrome("New task"), Form: in}
	if errs := in.FieldErrors(); len(errs) > 0 {
		p.Errors = errs
		s.render(w, http.StatusUnprocessableEntity, "task_form", p)
		return
	}
	if _, err := s.tasks.CreateTask(r.Context(), in); err != nil {
		p.Banner = msgCreateFailed
		s.render(w, http.StatusBadGateway, "task_form", p)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st, err := domain.ParseStatus(r.PostFormValue("status"))
	if err != nil {
		s.renderDashboard(w, r, http.StatusBadRequest, msgUpdateFailed)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.tasks.UpdateTask(r.Context(), id, domain.TaskUpdate{Status: &st}); err != nil {
		s.renderDashboard(w, r, http.StatusBadGateway, msgUpdateFailed)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderDashboard(w, r, http.StatusBadGateway, msgDeleteFailed)
		return
	}
	s.render(w, http.StatusOK, "confirm_delete", confirmPage{page: s.chrome("Delete task"), Task: task})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if _, err := s.tasks.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.renderDashboard(w, r, http.StatusBadGateway, msgDeleteFailed)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	p := chartPage{page: s.chrome("Statistics")}
	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		p.LoadFailed = true
		p.Banner = msgLoadFailed
	}
	p.Summary = stats.Aggregate(tasks)
	p.Slices = pieSlices(p.Summary)
	s.render(w, http.StatusOK, "chart", p)
}
