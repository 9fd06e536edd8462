package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trailarr/internal/access"
	"trailarr/internal/backend"
	"trailarr/internal/blacklist"
	"trailarr/internal/cache"
	"trailarr/internal/livesync"
	"trailarr/internal/model"
	"trailarr/internal/textutil"
)

func newExtrasCommand(ctx *commandContext) *cobra.Command {
	extrasCmd := &cobra.Command{
		Use:   "extras",
		Short: "Inspect and manage trailers and other extras",
	}
	extrasCmd.AddCommand(newExtrasListCommand(ctx))
	extrasCmd.AddCommand(newExtrasDownloadCommand(ctx))
	extrasCmd.AddCommand(newExtrasDeleteCommand(ctx))
	extrasCmd.AddCommand(newExtrasStatusCommand(ctx))
	extrasCmd.AddCommand(newExtrasWatchCommand(ctx))
	return extrasCmd
}

func newExtrasListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind> <id>",
		Short: "List the extras of a movie or series",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseMediaArgs(args)
			if err != nil {
				return err
			}
			return ctx.withAccess(func(a access.Access) error {
				result, err := a.Extras(cmd.Context(), kind, id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, newListing(result))
				}
				noteProvenance(cmd, result.Provenance)
				if len(result.Items) == 0 {
					printEmpty(cmd, "extras")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderExtrasTable(result.Items, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
}

func newExtrasDownloadCommand(ctx *commandContext) *cobra.Command {
	var extraType, extraTitle string
	cmd := &cobra.Command{
		Use:   "download <kind> <id> <youtubeId>",
		Short: "Queue an extra for download",
		Long: "Queue an extra for download. When --type or --title is omitted they are\n" +
			"looked up from the media item's extras list.",
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
				if err := fillExtraDetails(cmd, client, &ref); err != nil {
					return err
				}
				status, err := client.Download(cmd.Context(), ref)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"youtubeId": ref.YoutubeID, "status": string(status)})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine("Download", extraStatusKind(status),
					fmt.Sprintf("%s %q (%s) %s", ref.ExtraType, ref.ExtraTitle, ref.YoutubeID, status), shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&extraType, "type", "", "Extra type, e.g. Trailer")
	cmd.Flags().StringVar(&extraTitle, "title", "", "Extra title")
	return cmd
}

// fillExtraDetails completes a missing type or title from the media item's
// extras list.
func fillExtraDetails(cmd *cobra.Command, client *backend.Client, ref *backend.ExtraRef) error {
	if strings.TrimSpace(ref.ExtraType) != "" && strings.TrimSpace(ref.ExtraTitle) != "" {
		return nil
	}
	extras, err := client.Extras(cmd.Context(), ref.Kind, ref.MediaID)
	if err != nil {
		return fmt.Errorf("look up extra %s: %w", ref.YoutubeID, err)
	}
	for _, extra := range extras {
		if extra.YoutubeID != ref.YoutubeID {
			continue
		}
		if strings.TrimSpace(ref.ExtraType) == "" {
			ref.ExtraType = extra.Type
		}
		if strings.TrimSpace(ref.ExtraTitle) == "" {
			ref.ExtraTitle = extra.Title
		}
		return nil
	}
	return fmt.Errorf("extra %s not found for %s %d; pass --type and --title", ref.YoutubeID, ref.Kind, ref.MediaID)
}

func newExtrasDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id> <youtubeId>",
		Short: "Delete a downloaded extra",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseMediaArgs(args)
			if err != nil {
				return err
			}
			ref := backend.ExtraRef{Kind: kind, MediaID: id, YoutubeID: strings.TrimSpace(args[2])}
			return ctx.withClient(func(client *backend.Client) error {
				if err := client.DeleteExtra(cmd.Context(), ref); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"youtubeId": ref.YoutubeID, "status": "deleted"})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine("Delete", statusOK, fmt.Sprintf("removed %s from %s %d", ref.YoutubeID, kind, id), shouldColorize(out)))
				return nil
			})
		},
	}
}

func newExtrasStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <youtubeId>...",
		Short: "Look up the download status of extras",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *backend.Client) error {
				updates, err := client.BatchStatus(cmd.Context(), args)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					statuses := make(map[string]string, len(updates))
					for _, u := range updates {
						statuses[u.Key] = string(u.Status)
					}
					return writeJSON(cmd, statuses)
				}
				if len(updates) == 0 {
					printEmpty(cmd, "statuses")
					return nil
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(updates))
				for _, u := range updates {
					rows = append(rows, []string{u.Key, colorExtraStatus(u.Status, colorize)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{header: "YouTube ID"}, {header: "Status"}}, rows))
				return nil
			})
		},
	}
}

func newExtrasWatchCommand(ctx *commandContext) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch <kind> <id>",
		Short: "Follow the extras of a media item as downloads progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseMediaArgs(args)
			if err != nil {
				return err
			}
			ws, err := ctx.startWatch(cmd, opts)
			if err != nil {
				return err
			}
			defer ws.close()

			initial, err := ws.client.Extras(cmd.Context(), kind, id)
			if err != nil {
				return ctx.wrapBackendError(err)
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			return runWatch(cmd, ctx, ws, opts, livesync.ExtrasFeed(ws.client, kind, id), initial, watchView[model.Extra]{
				title:    fmt.Sprintf("Extras for %s %d", kind, id),
				resource: cache.ExtrasResource(kind, id),
				render: func(items []model.Extra) string {
					if len(items) == 0 {
						return "No extras"
					}
					return renderExtrasTable(items, colorize)
				},
			})
		},
	}
	addWatchFlags(cmd, &opts)
	return cmd
}

func renderExtrasTable(extras []model.Extra, colorize bool) string {
	rows := make([][]string, 0, len(extras))
	for _, extra := range extras {
		reason := ""
		if extra.Reason != "" {
			reason = blacklist.NormalizeReason(extra.Reason)
		}
		rows = append(rows, []string{
			extra.YoutubeID,
			orDash(extra.Type),
			textutil.CollapseSpace(extra.Title),
			colorExtraStatus(extra.Status, colorize),
			reason,
		})
	}
	return renderTable([]column{
		{header: "YouTube ID"},
		{header: "Type"},
		{header: "Title", maxWidth: 50},
		{header: "Status"},
		{header: "Reason", maxWidth: 50},
	}, rows)
}
