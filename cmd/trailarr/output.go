package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"trailarr/internal/access"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONLine encodes v as a single line, for streams of snapshots.
func writeJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// listing is the JSON envelope of a list command.
type listing[T any] struct {
	Items     []T        `json:"items"`
	Offline   bool       `json:"offline,omitempty"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
}

func newListing[T any](result access.Result[T]) listing[T] {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	out := listing[T]{Items: items, Offline: result.Offline}
	if result.Offline && !result.FetchedAt.IsZero() {
		fetched := result.FetchedAt
		out.FetchedAt = &fetched
	}
	return out
}

// noteProvenance warns on stderr when a result came from the cache.
func noteProvenance(cmd *cobra.Command, prov access.Provenance) {
	if !prov.Offline {
		return
	}
	w := cmd.ErrOrStderr()
	message := "showing cached data"
	if !prov.FetchedAt.IsZero() {
		message = fmt.Sprintf("showing cached data from %s", formatTime(prov.FetchedAt))
	}
	fmt.Fprintln(w, renderStatusLine("Backend", statusWarn, message, shouldColorize(w)))
}

func printEmpty(cmd *cobra.Command, what string) {
	fmt.Fprintf(cmd.OutOrStdout(), "No %s\n", what)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func formatInt(v int) string {
	if v == 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
