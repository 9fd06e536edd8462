package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// record is one JSON object indexed by canonical field name, so lookups
// ignore case and separator differences between endpoints.
type record map[string]json.RawMessage

func canonicalKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func decodeRecord(data json.RawMessage) (record, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	rec := make(record, len(raw))
	for key, value := range raw {
		canon := canonicalKey(key)
		if _, exists := rec[canon]; exists && isNull(value) {
			continue
		}
		rec[canon] = value
	}
	return rec, true
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (r record) raw(keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if value, ok := r[canonicalKey(key)]; ok && !isNull(value) {
			return value, true
		}
	}
	return nil, false
}

func (r record) has(keys ...string) bool {
	_, ok := r.raw(keys...)
	return ok
}

// str returns the first present field as a string. Numbers and booleans are
// rendered as their literal text.
func (r record) str(keys ...string) (string, bool) {
	value, ok := r.raw(keys...)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, true
	}
	trimmed := string(bytes.TrimSpace(value))
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' {
		return "", false
	}
	return trimmed, true
}

func (r record) text(keys ...string) string {
	s, _ := r.str(keys...)
	return strings.TrimSpace(s)
}

// integer accepts JSON numbers and numeric strings.
func (r record) integer(keys ...string) (int, bool) {
	value, ok := r.raw(keys...)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		if f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}
	return 0, false
}

func (r record) sequence(keys ...string) uint64 {
	n, ok := r.integer(keys...)
	if !ok || n < 0 {
		return 0
	}
	return uint64(n)
}

func (r record) strs(keys ...string) []string {
	value, ok := r.raw(keys...)
	if !ok {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(value, &list); err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		// Radarr/Sonarr alternate titles are objects carrying a title field.
		if rec, ok := decodeRecord(item); ok {
			if title := rec.text("title"); title != "" {
				out = append(out, title)
			}
		}
	}
	return out
}

// timestamp accepts RFC 3339 strings, a few common layouts, and unix seconds.
func (r record) timestamp(keys ...string) time.Time {
	value, ok := r.raw(keys...)
	if !ok {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return parseTime(s)
	}
	var f float64
	if err := json.Unmarshal(value, &f); err == nil && f > 0 {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return time.Time{}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && secs > 0 {
		return time.Unix(int64(secs), 0).UTC()
	}
	return time.Time{}
}

// duration accepts Go duration strings ("1h30m"), clock strings ("01:02:03"),
// and numbers in the given unit.
func (r record) duration(unit time.Duration, keys ...string) time.Duration {
	value, ok := r.raw(keys...)
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		if f <= 0 {
			return 0
		}
		return time.Duration(f * float64(unit))
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0
	}
	return parseDuration(s, unit)
}

func parseDuration(s string, unit time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if d, err := time.ParseDuration(s); err == nil {
		return max(d, 0)
	}
	if strings.Count(s, ":") == 2 {
		parts := strings.Split(s, ":")
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		sec, errS := strconv.ParseFloat(parts[2], 64)
		if errH == nil && errM == nil && errS == nil {
			return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec*float64(time.Second))
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return time.Duration(f * float64(unit))
	}
	return 0
}
