package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
)

var errNotLoggedIn = errors.New("not logged in; run tt login")

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "tasktrack CLI",
	Long: `tasktrack is a client for the personal task-tracking backend.
- Session: tt login stores the identity token in the workspace (.tasktrack/tasktrack.db by default); tt logout removes it.
- Tasks: tt task list|get|create|update|delete; statuses are to_do, in_progress and completed.
- Stats: tt stats counts tasks per status and shows the completion rate.
- Browser: tt serve starts the local web front end with the same session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if err := godotenv.Load(filepath.Join(workspace, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return setupLogging(cmd)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace directory")
	flags.Bool("json", false, "output JSON")
	flags.String("api-url", "", "backend base URL (overrides api.base_url)")
	flags.String("storage", "", "session storage driver: sqlite, redis or memory")
	flags.String("redis-addr", "", "redis address for the redis storage driver")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	for _, name := range []string{"workspace", "json", "api-url", "storage", "redis-addr", "log-level"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())
}

func setupLogging(cmd *cobra.Command) error {
	raw := viper.GetString("log-level")
	if raw == "" {
		raw = "warn"
		if cmd.Name() == "serve" {
			raw = "info"
		}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("invalid --log-level %q", raw)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads tasktrack.yml when present and applies flag and env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if v := viper.GetString("api-url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := viper.GetString("storage"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := viper.GetString("redis-addr"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.Open(ctx, viper.GetString("workspace"), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// withSession is withApp for commands that need a logged-in session.
func withSession(ctx context.Context, fn func(context.Context, *app.App) error) error {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if !a.Session.IsAuthenticated(ctx) {
			return errNotLoggedIn
		}
		return fn(ctx, a)
	})
}
