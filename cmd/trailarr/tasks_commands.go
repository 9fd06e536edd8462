package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trailarr/internal/access"
	"trailarr/internal/backend"
	"trailarr/internal/cache"
	"trailarr/internal/livesync"
	"trailarr/internal/model"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and trigger scheduled backend tasks",
	}
	tasksCmd.AddCommand(newTasksListCommand(ctx))
	tasksCmd.AddCommand(newTasksRunCommand(ctx))
	tasksCmd.AddCommand(newTasksWatchCommand(ctx))
	return tasksCmd
}

func newTasksListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(a access.Access) error {
				result, err := a.Tasks(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, newListing(result))
				}
				noteProvenance(cmd, result.Provenance)
				if len(result.Items) == 0 {
					printEmpty(cmd, "scheduled tasks")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTasksTable(result.Items, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
}

func newTasksRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <taskId>",
		Short: "Run a scheduled task now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *backend.Client) error {
				if err := client.RunTask(cmd.Context(), taskID); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"taskId": taskID, "status": string(model.TaskRunning)})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine("Task", statusOK, fmt.Sprintf("%s started", taskID), shouldColorize(out)))
				return nil
			})
		},
	}
}

func newTasksWatchCommand(ctx *commandContext) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow scheduled tasks as they run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.startWatch(cmd, opts)
			if err != nil {
				return err
			}
			defer ws.close()

			initial, err := ws.client.Tasks(cmd.Context())
			if err != nil {
				return ctx.wrapBackendError(err)
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			return runWatch(cmd, ctx, ws, opts, livesync.TasksFeed(ws.client), initial, watchView[model.TaskSchedule]{
				title:    "Tasks",
				resource: cache.ResourceTasks,
				render: func(items []model.TaskSchedule) string {
					if len(items) == 0 {
						return "No scheduled tasks"
					}
					return renderTasksTable(items, colorize)
				},
			})
		},
	}
	addWatchFlags(cmd, &opts)
	return cmd
}

func renderTasksTable(tasks []model.TaskSchedule, colorize bool) string {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		interval := "disabled"
		if !task.Disabled() {
			interval = task.Interval.String()
		}
		rows = append(rows, []string{
			task.ID,
			orDash(task.Name),
			interval,
			formatTime(task.LastExecution),
			formatTime(task.NextExecution),
			formatDuration(task.LastDuration),
			colorTaskStatus(task.Status, colorize),
		})
	}
	return renderTable([]column{
		{header: "ID"},
		{header: "Name", maxWidth: 40},
		{header: "Interval", align: alignRight},
		{header: "Last run"},
		{header: "Next run"},
		{header: "Took", align: alignRight},
		{header: "Status"},
	}, rows)
}
