package main

import (
	"fmt"
	"strconv"
	"strings"

	"trailarr/internal/model"
)

func parseKindArg(raw string) (model.Kind, error) {
	kind, err := model.ParseKind(raw)
	if err != nil {
		return model.KindUnknown, fmt.Errorf("media kind: %w", err)
	}
	return kind, nil
}

func parseMediaID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("media id must be a positive integer, got %q", raw)
	}
	return id, nil
}

// parseMediaArgs reads the leading "<kind> <id>" pair shared by extras commands.
func parseMediaArgs(args []string) (model.Kind, int, error) {
	kind, err := parseKindArg(args[0])
	if err != nil {
		return model.KindUnknown, 0, err
	}
	id, err := parseMediaID(args[1])
	if err != nil {
		return model.KindUnknown, 0, err
	}
	return kind, id, nil
}

// kindsFor expands a --kind filter. Empty or "all" selects both catalogs.
func kindsFor(filter string) ([]model.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "", "all":
		return []model.Kind{model.Movie, model.Series}, nil
	}
	kind, err := parseKindArg(filter)
	if err != nil {
		return nil, err
	}
	return []model.Kind{kind}, nil
}
