// Package search partitions catalog media into title matches and
// overview-only matches for a free-text query.
package search

import (
	"strings"

	"trailarr/internal/model"
	"trailarr/internal/textutil"
)

// Result holds the two disjoint match groups, each in input order.
type Result struct {
	TitleMatches    []model.Media `json:"titleMatches"`
	OverviewMatches []model.Media `json:"overviewMatches"`
}

// Total is the number of matched items.
func (r Result) Total() int {
	return len(r.TitleMatches) + len(r.OverviewMatches)
}

// Partition splits items by where query occurs. An item whose title contains
// the query is a title match; otherwise an item whose overview contains it is
// an overview match. Sort and alternate titles are not searched.
// Matching is case-insensitive substring containment. A blank query returns
// every item as a title match.
func Partition(query string, items []model.Media) Result {
	result := Result{
		TitleMatches:    []model.Media{},
		OverviewMatches: []model.Media{},
	}
	needle := strings.TrimSpace(query)
	if needle == "" {
		result.TitleMatches = append(result.TitleMatches, items...)
		return result
	}
	for _, item := range items {
		switch {
		case textutil.ContainsFold(item.Title, needle):
			result.TitleMatches = append(result.TitleMatches, item)
		case textutil.ContainsFold(item.Overview, needle):
			result.OverviewMatches = append(result.OverviewMatches, item)
		}
	}
	return result
}
