package blacklist

import (
	"regexp"
	"strings"

	"trailarr/internal/textutil"
)

const (
	ReasonPrivate      = "Private video. Sign in if you've been granted access to this video."
	ReasonGeoBlocked   = "The uploader has not made this video available in your country."
	ReasonAgeGated     = "Sign in to confirm your age. This video may be inappropriate for some users."
	ReasonNoData       = "Did not get any data blocks"
	ReasonOther        = "Other"
	videoIDPlaceholder = "[youtube] <video>:"
)

// canonical lists each known category with the folded fragments that identify it.
var canonical = []struct {
	reason    string
	fragments []string
}{
	{ReasonPrivate, []string{"private video"}},
	{ReasonGeoBlocked, []string{"not made this video available in your country"}},
	{ReasonAgeGated, []string{"sign in to confirm your age", "inappropriate for some users"}},
	{ReasonNoData, []string{"did not get any data blocks"}},
}

var videoIDPattern = regexp.MustCompile(`\[youtube\]\s+[A-Za-z0-9_-]+:`)

// NormalizeReason maps a raw failure message to its display category.
//
// Messages containing one of the known phrases map to the canonical phrase
// regardless of surrounding text. Anything else is reduced to its first line
// with the video identifier masked. Empty input yields "Other".
func NormalizeReason(raw string) string {
	collapsed := textutil.CollapseSpace(raw)
	if collapsed == "" {
		return ReasonOther
	}
	folded := textutil.Fold(collapsed)
	for _, known := range canonical {
		for _, fragment := range known.fragments {
			if strings.Contains(folded, fragment) {
				return known.reason
			}
		}
	}
	line := textutil.FirstLine(raw)
	line = videoIDPattern.ReplaceAllLiteralString(line, videoIDPlaceholder)
	line = strings.TrimSpace(line)
	if line == "" {
		return ReasonOther
	}
	return line
}
