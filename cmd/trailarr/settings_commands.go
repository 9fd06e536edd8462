package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"trailarr/internal/backend"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change backend settings",
	}
	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <section>",
		Short: "Print one settings section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if ctx.jsonOutput() {
				format = "json"
			}
			switch format {
			case "", "table", "json", "yaml":
			default:
				return fmt.Errorf("output format must be table, json, or yaml, got %q", format)
			}
			return ctx.withClient(func(client *backend.Client) error {
				values, err := client.Settings(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				switch format {
				case "json":
					return writeJSON(cmd, values)
				case "yaml":
					return writeYAML(cmd, values)
				}
				if len(values) == 0 {
					printEmpty(cmd, "settings")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSettingsTable(values))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json, or yaml")
	return cmd
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <key=value>...",
		Short: "Change settings in one section",
		Long: "Change settings in one section. Values that parse as JSON (numbers,\n" +
			"booleans, arrays, objects) are sent as such; anything else is a string.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := args[0]
			values, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *backend.Client) error {
				if err := client.SaveSettings(cmd.Context(), section, values); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"section": section, "saved": values})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine("Settings", statusOK, fmt.Sprintf("saved %d value(s) to %s", len(values), section), shouldColorize(out)))
				return nil
			})
		},
	}
}

// parseAssignments turns key=value arguments into a settings map.
func parseAssignments(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("setting %q must be key=value", arg)
		}
		values[key] = parseSettingValue(raw)
	}
	return values, nil
}

func parseSettingValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}

func renderSettingsTable(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, settingString(values[key])})
	}
	return renderTable([]column{{header: "Key"}, {header: "Value", maxWidth: 70}}, rows)
}

func settingString(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return v
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
