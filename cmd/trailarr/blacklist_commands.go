package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trailarr/internal/access"
	"trailarr/internal/backend"
	"trailarr/internal/blacklist"
	"trailarr/internal/cache"
	"trailarr/internal/livesync"
	"trailarr/internal/model"
)

func newBlacklistCommand(ctx *commandContext) *cobra.Command {
	blacklistCmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Review extras the backend could not download",
	}
	blacklistCmd.AddCommand(newBlacklistListCommand(ctx))
	blacklistCmd.AddCommand(newBlacklistRemoveCommand(ctx))
	blacklistCmd.AddCommand(newBlacklistWatchCommand(ctx))
	return blacklistCmd
}

func newBlacklistListCommand(ctx *commandContext) *cobra.Command {
	var grouped bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blacklisted extras",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(a access.Access) error {
				result, err := a.Blacklist(cmd.Context())
				if err != nil {
					return err
				}
				if grouped {
					groups := blacklist.GroupEntries(result.Items)
					if ctx.jsonOutput() {
						if groups == nil {
							groups = []blacklist.Group{}
						}
						return writeJSON(cmd, groups)
					}
					noteProvenance(cmd, result.Provenance)
					if len(groups) == 0 {
						printEmpty(cmd, "blacklisted extras")
						return nil
					}
					fmt.Fprint(cmd.OutOrStdout(), renderBlacklistGroups(groups, shouldColorize(cmd.OutOrStdout())))
					return nil
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, newListing(result))
				}
				noteProvenance(cmd, result.Provenance)
				if len(result.Items) == 0 {
					printEmpty(cmd, "blacklisted extras")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderBlacklistTable(result.Items, true, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&grouped, "grouped", false, "Group entries by failure reason")
	return cmd
}

func newBlacklistRemoveCommand(ctx *commandContext) *cobra.Command {
	var extraType, extraTitle string
	cmd := &cobra.Command{
		Use:   "remove <kind> <id> <youtubeId>",
		Short: "Clear a blacklist entry so the extra can be retried",
		Long: "Clear a blacklist entry so the extra can be retried. When --type or\n" +
			"--title is omitted they are looked up from the blacklist.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseMediaArgs(args)
			if err != nil {
				return err
			}
			ref := backend.ExtraRef{
				Kind:       kind,
				MediaID:    id,
				YoutubeID:  strings.TrimSpace(args[2]),
				ExtraType:  extraType,
				ExtraTitle: extraTitle,
			}
			return ctx.withClient(func(client *backend.Client) error {
				if err := fillBlacklistDetails(cmd, client, &ref); err != nil {
					return err
				}
				if err := client.RemoveFromBlacklist(cmd.Context(), ref); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"youtubeId": ref.YoutubeID, "status": "removed"})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine("Blacklist", statusOK, fmt.Sprintf("removed %s %q (%s)", ref.ExtraType, ref.ExtraTitle, ref.YoutubeID), shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&extraType, "type", "", "Extra type, e.g. Trailer")
	cmd.Flags().StringVar(&extraTitle, "title", "", "Extra title")
	return cmd
}

func fillBlacklistDetails(cmd *cobra.Command, client *backend.Client, ref *backend.ExtraRef) error {
	if strings.TrimSpace(ref.ExtraType) != "" && strings.TrimSpace(ref.ExtraTitle) != "" {
		return nil
	}
	entries, err := client.Blacklist(cmd.Context())
	if err != nil {
		return fmt.Errorf("look up blacklist entry %s: %w", ref.YoutubeID, err)
	}
	for _, entry := range entries {
		if entry.YoutubeID != ref.YoutubeID || entry.MediaID != ref.MediaID || entry.MediaKind != ref.Kind {
			continue
		}
		if strings.TrimSpace(ref.ExtraType) == "" {
			ref.ExtraType = entry.Type
		}
		if strings.TrimSpace(ref.ExtraTitle) == "" {
			ref.ExtraTitle = entry.Title
		}
		return nil
	}
	return fmt.Errorf("blacklist entry %s not found for %s %d; pass --type and --title", ref.YoutubeID, ref.Kind, ref.MediaID)
}

func newBlacklistWatchCommand(ctx *commandContext) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow blacklisted extras as retries progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.startWatch(cmd, opts)
			if err != nil {
				return err
			}
			defer ws.close()

			initial, err := ws.client.Blacklist(cmd.Context())
			if err != nil {
				return ctx.wrapBackendError(err)
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			return runWatch(cmd, ctx, ws, opts, livesync.BlacklistFeed(ws.client), initial, watchView[model.BlacklistEntry]{
				title:    "Blacklist",
				resource: cache.ResourceBlacklist,
				render: func(items []model.BlacklistEntry) string {
					if len(items) == 0 {
						return "No blacklisted extras"
					}
					return renderBlacklistTable(items, true, colorize)
				},
			})
		},
	}
	addWatchFlags(cmd, &opts)
	return cmd
}

func renderBlacklistTable(entries []model.BlacklistEntry, withReason bool, colorize bool) string {
	columns := []column{
		{header: "Media", maxWidth: 40},
		{header: "YouTube ID"},
		{header: "Type"},
		{header: "Title", maxWidth: 40},
		{header: "Status"},
	}
	if withReason {
		columns = append(columns, column{header: "Reason", maxWidth: 50})
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		row := []string{
			mediaLabel(entry.MediaTitle, entry.MediaKind, entry.MediaID),
			entry.YoutubeID,
			orDash(entry.Type),
			entry.Title,
			colorExtraStatus(entry.Status, colorize),
		}
		if withReason {
			row = append(row, blacklist.NormalizeReason(entry.Reason))
		}
		rows = append(rows, row)
	}
	return renderTable(columns, rows)
}

func renderBlacklistGroups(groups []blacklist.Group, colorize bool) string {
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		title := group.Reason
		if title == "" {
			title = "No reason given"
		}
		for _, line := range renderSectionHeader(fmt.Sprintf("%s (%d)", title, len(group.Entries)), colorize) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(renderBlacklistTable(group.Entries, false, colorize))
		b.WriteString("\n")
	}
	return b.String()
}

// mediaLabel prefers the media title and falls back to "movie 12".
func mediaLabel(title string, kind model.Kind, id int) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return kind.String() + " " + strconv.Itoa(id)
}
