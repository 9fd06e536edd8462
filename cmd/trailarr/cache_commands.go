package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trailarr/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the offline snapshot cache",
	}
	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) withCache(fn func(*cache.Store) error) error {
	store, err := cache.Open(c.configValue())
	if err != nil {
		if errors.Is(err, cache.ErrDisabled) {
			return errors.New("cache is disabled; set cache.enabled = true to use it")
		}
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List cached snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *cache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []cache.Entry{}
					}
					return writeJSON(cmd, map[string]any{"path": store.Path(), "snapshots": entries})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache: %s\n", store.Path())
				if len(entries) == 0 {
					printEmpty(cmd, "cached snapshots")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{entry.Resource, formatTime(entry.FetchedAt), formatBytes(int64(entry.Bytes))})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "Resource"},
					{header: "Fetched"},
					{header: "Size", align: alignRight},
				}, rows))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *cache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if errors.Is(err, cache.ErrCacheBusy) {
					return errors.New("cache is in use by a running watch; stop it and retry")
				}
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int64{"removed": removed})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine("Cache", statusOK, fmt.Sprintf("removed %d snapshot(s)", removed), shouldColorize(out)))
				return nil
			})
		},
	}
}
