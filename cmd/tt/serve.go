package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"tasktrack/internal/app"
	"tasktrack/internal/web"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if !cmd.Flags().Changed("addr") {
					addr = a.Config.Web.Addr
				}
				handler, err := web.New(web.Config{Session: a.Session, Tasks: a.API, Logger: a.Logger, Addr: addr})
				if err != nil {
					return err
				}
				ln, err := net.Listen("tcp", addr)
				if err != nil {
					return err
				}
				srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				slog.Info("serving", "addr", addr, "backend", a.API.BaseURL)
				fmt.Printf("Serving tasktrack on http://%s (JSON API under /api, OpenAPI at /api/openapi.json)\n", addr)
				return serveUntilDone(ctx, srv, ln)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address (overrides web.addr)")
	return cmd
}

// serveUntilDone serves on ln until ctx is cancelled and returns only after
// in-flight requests have drained, so callers may close what handlers use.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener) error {
	drained := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(drained)
		select {
		case <-ctx.Done():
		case <-stop:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()
	err := srv.Serve(ln)
	close(stop)
	<-drained
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
