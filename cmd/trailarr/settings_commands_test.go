package main

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"trailarr/internal/testsupport"
)

func TestSettingsShowFormats(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.SetSettings("general", testsupport.Record{"monitorInterval": 60, "autoDownload": false, "language": "en"})

	stdout, _, err := env.run(t, "settings", "show", "general")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	for _, want := range []string{"autoDownload", "false", "monitorInterval", "60", "language", "en"} {
		requireContains(t, stdout, want)
	}
	if strings.Index(stdout, "autoDownload") > strings.Index(stdout, "monitorInterval") {
		t.Fatalf("keys should be sorted:\n%s", stdout)
	}

	stdout, _, err = env.run(t, "settings", "show", "general", "-o", "yaml")
	if err != nil {
		t.Fatalf("settings show -o yaml: %v", err)
	}
	requireContains(t, stdout, "autoDownload: false")
	requireContains(t, stdout, "monitorInterval: 60")

	stdout, _, err = env.run(t, "--json", "settings", "show", "general")
	if err != nil {
		t.Fatalf("settings show --json: %v", err)
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(stdout), &values); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if values["language"] != "en" {
		t.Fatalf("unexpected values %v", values)
	}

	if _, _, err := env.run(t, "settings", "show", "general", "-o", "xml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if _, _, err := env.run(t, "settings", "show", "missing"); err == nil {
		t.Fatal("expected missing section error")
	}
}

func TestSettingsSet(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.SetSettings("general", testsupport.Record{"monitorInterval": 60, "language": "en"})

	stdout, _, err := env.run(t, "settings", "set", "general", "monitorInterval=120", "autoDownload=true", "language=de")
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	requireContains(t, stdout, "saved 3 value(s) to general")

	got := env.fake.Settings("general")
	if got["monitorInterval"] != float64(120) || got["autoDownload"] != true || got["language"] != "de" {
		t.Fatalf("unexpected settings %v", got)
	}

	if _, _, err := env.run(t, "settings", "set", "general", "novalue"); err == nil || !strings.Contains(err.Error(), "key=value") {
		t.Fatalf("expected assignment error, got %v", err)
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a=1", "b=hello world", "c=[1,2]", "d=", "e={\"x\":true}"})
	if err != nil {
		t.Fatalf("parseAssignments: %v", err)
	}
	want := map[string]any{
		"a": float64(1),
		"b": "hello world",
		"c": []any{float64(1), float64(2)},
		"d": "",
		"e": map[string]any{"x": true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseAssignments = %#v, want %#v", got, want)
	}
	if _, err := parseAssignments([]string{"=1"}); err == nil {
		t.Fatal("expected empty key error")
	}
}
