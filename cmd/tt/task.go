package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasktrack/internal/app"
	"tasktrack/internal/domain"
)

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskGetCmd())
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskDeleteCmd())
	return task
}

func taskListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter domain.Status
			if status != "" {
				st, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = st
			}
			return withSession(cmd.Context(), func(ctx context.Context, a *app.App) error {
				tasks, err := a.API.ListTasks(ctx)
				if err != nil {
					return fmt.Errorf("list tasks: %w", err)
				}
				if filter != "" {
					kept := tasks[:0]
					for _, t := range tasks {
						if t.Status == filter {
							kept = append(kept, t)
						}
					}
					tasks = kept
				}
				if viper.GetBool("json") {
					if tasks == nil {
						tasks = []domain.Task{}
					}
					return printJSON(tasks)
				}
				if len(tasks) == 0 {
					fmt.Println("You don't have any tasks yet. Create one with tt task create.")
					return nil
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Created"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status.Label(), domain.DisplayDate(t.CreatedAt)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func taskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app.App) error {
				t, err := a.API.GetTask(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get task %s: %w", args[0], err)
				}
				return printTask(t)
			})
		},
	}
}

func taskCreateCmd() *cobra.Command {
	var in domain.TaskCreate
	var status string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseStatus(status)
			if err != nil {
				return err
			}
			in.Status = st
			if errs := in.FieldErrors(); len(errs) > 0 {
				return fieldError(errs)
			}
			return withSession(cmd.Context(), func(ctx context.Context, a *app.App) error {
				t, err := a.API.CreateTask(ctx, in)
				if err != nil {
					return fmt.Errorf("create task: %w", err)
				}
				return printTask(t)
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "task title")
	cmd.Flags().StringVar(&in.Description, "description", "", "task description")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusTodo), "to_do, in_progress or completed")
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task; only the flags given are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.TaskUpdate
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("status") {
				st, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = &st
			}
			if in.Empty() {
				return fmt.Errorf("nothing to update; pass --title, --description or --status")
			}
			return withSession(cmd.Context(), func(ctx context.Context, a *app.App) error {
				t, err := a.API.UpdateTask(ctx, args[0], in)
				if err != nil {
					return fmt.Errorf("update task %s: %w", args[0], err)
				}
				return printTask(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	return cmd
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app.App) error {
				res, err := a.API.DeleteTask(ctx, args[0])
				if err != nil {
					return fmt.Errorf("delete task %s: %w", args[0], err)
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				fmt.Println(res.Message)
				return nil
			})
		},
	}
}

func printTask(t domain.Task) error {
	if viper.GetBool("json") {
		return printJSON(t)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft}})
	updated := ""
	if t.UpdatedAt != nil {
		updated = domain.DisplayDate(*t.UpdatedAt)
	}
	for _, row := range []table.Row{
		{"ID", t.ID},
		{"Title", t.Title},
		{"Description", t.Description},
		{"Status", t.Status.Label()},
		{"Created", domain.DisplayDate(t.CreatedAt)},
		{"Updated", updated},
	} {
		tw.AppendRow(row)
	}
	tw.Render()
	return nil
}

func fieldError(errs map[string]string) error {
	msgs := make([]string, 0, len(errs))
	for _, m := range errs {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
