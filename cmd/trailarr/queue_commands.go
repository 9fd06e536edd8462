package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trailarr/internal/access"
	"trailarr/internal/model"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the download queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued and recent downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(a access.Access) error {
				result, err := a.Queue(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, newListing(result))
				}
				noteProvenance(cmd, result.Provenance)
				if len(result.Items) == 0 {
					printEmpty(cmd, "queued downloads")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderQueueTable(result.Items, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
}

func renderQueueTable(entries []model.QueueEntry, colorize bool) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			mediaLabel(entry.MediaTitle, entry.MediaKind, entry.MediaID),
			entry.YoutubeID,
			orDash(entry.ExtraType),
			orDash(entry.ExtraTitle),
			colorExtraStatus(entry.Status, colorize),
			formatTime(entry.QueuedAt),
			formatDuration(entry.Duration),
		})
	}
	return renderTable([]column{
		{header: "Media", maxWidth: 40},
		{header: "YouTube ID"},
		{header: "Type"},
		{header: "Title", maxWidth: 40},
		{header: "Status"},
		{header: "Queued"},
		{header: "Duration", align: alignRight},
	}, rows)
}
