package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasktrack/internal/app"
	"tasktrack/internal/stats"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app.App) error {
				tasks, err := a.API.ListTasks(ctx)
				if err != nil {
					return fmt.Errorf("list tasks: %w", err)
				}
				s := stats.Aggregate(tasks)
				if viper.GetBool("json") {
					return printJSON(s)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Status", "Count", "Share"})
				for i, b := range s.Buckets {
					tw.AppendRow(table.Row{b.Label, b.Count, fmt.Sprintf("%d%%", s.Percent(i))})
				}
				tw.AppendFooter(table.Row{"Total", s.Total, fmt.Sprintf("%d%% done", s.CompletionRate)})
				tw.Render()
				return nil
			})
		},
	}
}
