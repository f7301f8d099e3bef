package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasktrack/internal/app"
	"tasktrack/internal/domain"
)

func registerCmd() *cobra.Command {
	var in domain.Profile
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				reg, err := a.Session.Register(ctx, in)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reg)
				}
				fmt.Printf("Registered %s (user %s). Log in with tt login.\n", in.Email, reg.UserID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func loginCmd() *cobra.Command {
	var in domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if _, err := a.Session.Login(ctx, in); err != nil {
					return err
				}
				return printWhoami(ctx, a)
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.Logout(ctx); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]bool{"authenticated": false})
				}
				fmt.Println("Logged out.")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), printWhoami)
		},
	}
}

func printWhoami(ctx context.Context, a *app.App) error {
	u := a.Session.User()
	expired := a.Session.Expired(ctx)
	if viper.GetBool("json") {
		return printJSON(struct {
			Authenticated bool         `json:"authenticated"`
			Expired       bool         `json:"expired"`
			User          *domain.User `json:"user,omitempty"`
		}{true, expired, u})
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"User ID", "Email", "Name", "Token expired"})
	if u == nil {
		tw.AppendRow(table.Row{"-", "-", "-", expired})
	} else {
		tw.AppendRow(table.Row{u.UserID, u.Email, u.Name, expired})
	}
	tw.Render()
	return nil
}
