package blacklist_test

import (
	"testing"

	"trailarr/internal/blacklist"
	"trailarr/internal/model"
)

func TestNormalizeReasonKnownPhrases(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{
			raw:  "ERROR: [youtube] abc123: Private video. Sign in if you've been granted access to this video.",
			want: blacklist.ReasonPrivate,
		},
		{
			raw:  "  ERROR: [youtube] XyZ_9-q: PRIVATE   VIDEO.\n Sign in if you've been granted access  ",
			want: blacklist.ReasonPrivate,
		},
		{
			raw:  "ERROR: [youtube] k2: The uploader has not made this video available in your country.\nYou might want to use a VPN",
			want: blacklist.ReasonGeoBlocked,
		},
		{
			raw:  "ERROR: [youtube] q: Sign in to confirm your age. This video may be inappropriate for some users. Use --cookies",
			want: blacklist.ReasonAgeGated,
		},
		{
			raw:  "ERROR: Did not get any data blocks (retry 3/3)",
			want: blacklist.ReasonNoData,
		},
	}
	for _, tc := range cases {
		if got := blacklist.NormalizeReason(tc.raw); got != tc.want {
			t.Fatalf("NormalizeReason(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeReasonUnknownMasksVideoID(t *testing.T) {
	raw := "ERROR: [youtube] dQw4w9WgXcQ: Video unavailable. This video has been removed\nsecond line detail"
	want := "ERROR: [youtube] <video>: Video unavailable. This video has been removed"
	if got := blacklist.NormalizeReason(raw); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	other := "ERROR: [youtube] Zz-1_2: Video unavailable. This video has been removed\nmore"
	if blacklist.NormalizeReason(other) != want {
		t.Fatal("expected different video ids to share a category")
	}
}

func TestNormalizeReasonEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		if got := blacklist.NormalizeReason(raw); got != blacklist.ReasonOther {
			t.Fatalf("NormalizeReason(%q) = %q, want Other", raw, got)
		}
	}
}

func TestNormalizeReasonIsDeterministic(t *testing.T) {
	raw := "Some new failure\nwith detail"
	if blacklist.NormalizeReason(raw) != blacklist.NormalizeReason(raw) {
		t.Fatal("expected deterministic output")
	}
	if got := blacklist.NormalizeReason(raw); got != "Some new failure" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestGroupEntries(t *testing.T) {
	entry := func(id, reason string) model.BlacklistEntry {
		return model.BlacklistEntry{Extra: model.Extra{YoutubeID: id, Reason: reason}}
	}
	groups := blacklist.GroupEntries([]model.BlacklistEntry{
		entry("a", "ERROR: [youtube] a: Private video. Sign in"),
		entry("b", ""),
		entry("c", "ERROR: [youtube] c: Private video."),
		entry("d", "Did not get any data blocks"),
		entry("e", "private video"),
	})
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(groups), groups)
	}
	if groups[0].Reason != blacklist.ReasonPrivate || len(groups[0].Entries) != 3 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	order := []string{groups[0].Entries[0].YoutubeID, groups[0].Entries[1].YoutubeID, groups[0].Entries[2].YoutubeID}
	if order[0] != "a" || order[1] != "c" || order[2] != "e" {
		t.Fatalf("expected input order inside group, got %v", order)
	}
	if groups[1].Reason != blacklist.ReasonNoData || groups[2].Reason != blacklist.ReasonOther {
		t.Fatalf("expected ties ordered by reason, got %q then %q", groups[1].Reason, groups[2].Reason)
	}
}
