package model

import (
	"strconv"
	"time"
)

// Media is a movie or series from the library the backend tracks.
type Media struct {
	ID              int      `json:"id"`
	Kind            Kind     `json:"kind"`
	Title           string   `json:"title"`
	SortTitle       string   `json:"sortTitle,omitempty"`
	AlternateTitles []string `json:"alternateTitles,omitempty"`
	Overview        string   `json:"overview,omitempty"`
	Year            int      `json:"year,omitempty"`
	Path            string   `json:"path,omitempty"`
}

// Key identifies the media item across kinds.
func (m Media) Key() string {
	return m.Kind.String() + ":" + strconv.Itoa(m.ID)
}

// Extra is one trailer or other bonus video attached to a media item.
type Extra struct {
	MediaKind Kind        `json:"mediaKind"`
	MediaID   int         `json:"mediaId"`
	YoutubeID string      `json:"youtubeId"`
	Title     string      `json:"title"`
	Type      string      `json:"type"`
	FileName  string      `json:"fileName,omitempty"`
	Status    ExtraStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`
}

// Key is the identifier push and poll updates are matched on.
func (e Extra) Key() string { return e.YoutubeID }

// BlacklistEntry is an extra the backend refused or failed to download.
type BlacklistEntry struct {
	Extra
	MediaTitle string `json:"mediaTitle,omitempty"`
}

// QueueEntry is one item of the backend download queue.
type QueueEntry struct {
	MediaKind  Kind          `json:"mediaKind"`
	MediaID    int           `json:"mediaId"`
	MediaTitle string        `json:"mediaTitle,omitempty"`
	YoutubeID  string        `json:"youtubeId"`
	ExtraType  string        `json:"extraType,omitempty"`
	ExtraTitle string        `json:"extraTitle,omitempty"`
	Status     ExtraStatus   `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	QueuedAt   time.Time     `json:"queuedAt,omitzero"`
	StartedAt  time.Time     `json:"startedAt,omitzero"`
	EndedAt    time.Time     `json:"endedAt,omitzero"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Key is the identifier push and poll updates are matched on.
func (q QueueEntry) Key() string { return q.YoutubeID }

// TaskSchedule describes one backend scheduled task.
type TaskSchedule struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Interval      time.Duration `json:"interval"`
	LastExecution time.Time     `json:"lastExecution,omitzero"`
	NextExecution time.Time     `json:"nextExecution,omitzero"`
	LastDuration  time.Duration `json:"lastDuration,omitempty"`
	Status        TaskStatus    `json:"status"`
}

// Disabled reports whether the task has no schedule. An interval of zero is
// the backend's disabled sentinel.
func (t TaskSchedule) Disabled() bool { return t.Interval <= 0 }

// Key is the identifier push and poll updates are matched on.
func (t TaskSchedule) Key() string { return t.ID }

// Source records which channel delivered an update.
type Source uint8

const (
	SourcePush Source = iota + 1
	SourcePoll
)

func (s Source) String() string {
	switch s {
	case SourcePush:
		return "push"
	case SourcePoll:
		return "poll"
	default:
		return "unknown"
	}
}

// StatusUpdate carries a new status for the item identified by Key.
type StatusUpdate struct {
	Key       string
	Status    ExtraStatus
	Reason    string
	HasReason bool
	// Seq orders updates for the same key when the backend provides it; zero means unordered.
	Seq    uint64
	Source Source
}

// ApplyTo overwrites status, and reason when the update carries one. It
// reports whether anything changed.
func (u StatusUpdate) ApplyTo(status *ExtraStatus, reason *string) bool {
	changed := false
	if *status != u.Status {
		*status = u.Status
		changed = true
	}
	if u.HasReason && *reason != u.Reason {
		*reason = u.Reason
		changed = true
	}
	return changed
}
