package web

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"tasktrack/internal/domain"
	"tasktrack/internal/stats"
)

type healthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}

type sessionOutput struct {
	Body struct {
		Authenticated bool         `json:"authenticated"`
		Expired       bool         `json:"expired" doc:"Identity token is past its exp claim; informational only"`
		User          *domain.User `json:"user,omitempty"`
	}
}

type statsOutput struct {
	Body stats.Summary
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*healthOutput, error) {
		out := &healthOutput{}
		out.Body.Status = "ok"
		return out, nil
	})
}

func registerSession(api huma.API, sess Session) {
	huma.Register(api, huma.Operation{
		OperationID: "session",
		Method:      http.MethodGet,
		Path:        "/session",
		Summary:     "Current session",
	}, func(ctx context.Context, _ *struct{}) (*sessionOutput, error) {
		out := &sessionOutput{}
		out.Body.Authenticated = sess.IsAuthenticated(ctx)
		if out.Body.Authenticated {
			out.Body.Expired = sess.Expired(ctx)
			out.Body.User = sess.User()
		}
		return out, nil
	})
}

func registerStats(api huma.API, sess Session, tasks Tasks) {
	huma.Register(api, huma.Operation{
		OperationID: "stats",
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Task counts by status",
	}, func(ctx context.Context, _ *struct{}) (*statsOutput, error) {
		if !sess.IsAuthenticated(ctx) {
			return nil, huma.Error401Unauthorized("not logged in")
		}
		list, err := tasks.ListTasks(ctx)
		if err != nil {
			return nil, huma.Error502BadGateway("failed to load tasks", err)
		}
		return &statsOutput{Body: stats.Aggregate(list)}, nil
	})
}
