package blacklist

import (
	"sort"

	"trailarr/internal/model"
)

// Group is every blacklist entry sharing one normalized reason.
type Group struct {
	Reason  string                 `json:"reason"`
	Entries []model.BlacklistEntry `json:"entries"`
}

// GroupEntries buckets entries by NormalizeReason. Larger groups come first,
// ties are ordered by reason; entries keep their input order within a group.
func GroupEntries(entries []model.BlacklistEntry) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, entry := range entries {
		reason := NormalizeReason(entry.Reason)
		pos, ok := index[reason]
		if !ok {
			pos = len(groups)
			index[reason] = pos
			groups = append(groups, Group{Reason: reason})
		}
		groups[pos].Entries = append(groups[pos].Entries, entry)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Entries) != len(groups[j].Entries) {
			return len(groups[i].Entries) > len(groups[j].Entries)
		}
		return groups[i].Reason < groups[j].Reason
	})
	return groups
}
