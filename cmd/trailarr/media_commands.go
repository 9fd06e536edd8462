package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trailarr/internal/access"
	"trailarr/internal/model"
	"trailarr/internal/search"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Browse the movie and series catalogs",
	}
	mediaCmd.AddCommand(newMediaListCommand(ctx))
	return mediaCmd
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	var kindFilter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindsFor(kindFilter)
			if err != nil {
				return err
			}
			return ctx.withAccess(func(a access.Access) error {
				result, err := loadCatalog(cmd, a, kinds)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, newListing(result))
				}
				noteProvenance(cmd, result.Provenance)
				if len(result.Items) == 0 {
					printEmpty(cmd, "media")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMediaTable(result.Items))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kindFilter, "kind", "all", "Catalog to list: movie, series, or all")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var kindFilter string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search catalog titles and overviews",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindsFor(kindFilter)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			return ctx.withAccess(func(a access.Access) error {
				catalog, err := loadCatalog(cmd, a, kinds)
				if err != nil {
					return err
				}
				result := search.Partition(query, catalog.Items)
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				noteProvenance(cmd, catalog.Provenance)
				out := cmd.OutOrStdout()
				if result.Total() == 0 {
					fmt.Fprintf(out, "No media matching %q\n", query)
					return nil
				}
				colorize := shouldColorize(out)
				sections := []struct {
					title string
					items []model.Media
				}{
					{"Title matches", result.TitleMatches},
					{"Overview matches", result.OverviewMatches},
				}
				printed := false
				for _, section := range sections {
					if len(section.items) == 0 {
						continue
					}
					if printed {
						fmt.Fprintln(out)
					}
					printed = true
					for _, line := range renderSectionHeader(fmt.Sprintf("%s (%d)", section.title, len(section.items)), colorize) {
						fmt.Fprintln(out, line)
					}
					fmt.Fprintln(out, renderMediaTable(section.items))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kindFilter, "kind", "all", "Catalog to search: movie, series, or all")
	return cmd
}

// loadCatalog reads each requested kind and concatenates them. The result is
// offline if any part came from the cache, dated by the oldest snapshot.
func loadCatalog(cmd *cobra.Command, a access.Access, kinds []model.Kind) (access.Result[model.Media], error) {
	var combined access.Result[model.Media]
	for _, kind := range kinds {
		result, err := a.Media(cmd.Context(), kind)
		if err != nil {
			return access.Result[model.Media]{}, fmt.Errorf("list %s: %w", kind.PathSegment(), err)
		}
		combined.Items = append(combined.Items, result.Items...)
		if result.Offline {
			if !combined.Offline || result.FetchedAt.Before(combined.FetchedAt) {
				combined.FetchedAt = result.FetchedAt
			}
			combined.Offline = true
		}
	}
	return combined, nil
}

func renderMediaTable(items []model.Media) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(item.ID),
			item.Kind.String(),
			item.Title,
			formatInt(item.Year),
		})
	}
	return renderTable([]column{
		{header: "ID", align: alignRight},
		{header: "Kind"},
		{header: "Title", maxWidth: 60},
		{header: "Year", align: alignRight},
	}, rows)
}
