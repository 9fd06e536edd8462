package model

import "strings"

// ExtraStatus is the download lifecycle of one extra.
type ExtraStatus string

const (
	ExtraNotDownloaded ExtraStatus = "not-downloaded"
	ExtraQueued        ExtraStatus = "queued"
	ExtraDownloading   ExtraStatus = "downloading"
	ExtraDownloaded    ExtraStatus = "downloaded"
	ExtraFailed        ExtraStatus = "failed"
	ExtraRejected      ExtraStatus = "rejected"
)

var extraStatusAliases = map[string]ExtraStatus{
	"not-downloaded": ExtraNotDownloaded,
	"not_downloaded": ExtraNotDownloaded,
	"missing":        ExtraNotDownloaded,
	"deleted":        ExtraNotDownloaded,
	"":               ExtraNotDownloaded,
	"queued":         ExtraQueued,
	"pending":        ExtraQueued,
	"downloading":    ExtraDownloading,
	"running":        ExtraDownloading,
	"in-progress":    ExtraDownloading,
	"downloaded":     ExtraDownloaded,
	"exists":         ExtraDownloaded,
	"completed":      ExtraDownloaded,
	"failed":         ExtraFailed,
	"error":          ExtraFailed,
	"rejected":       ExtraRejected,
	"blacklisted":    ExtraRejected,
}

// ParseExtraStatus maps backend vocabulary onto the closed status set.
func ParseExtraStatus(raw string) (ExtraStatus, bool) {
	status, ok := extraStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Active reports whether the backend is still working on the extra.
func (s ExtraStatus) Active() bool {
	return s == ExtraQueued || s == ExtraDownloading
}

// TaskStatus is the last known state of a scheduled task.
type TaskStatus string

const (
	TaskIdle    TaskStatus = "idle"
	TaskRunning TaskStatus = "running"
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
)

var taskStatusAliases = map[string]TaskStatus{
	"":          TaskIdle,
	"idle":      TaskIdle,
	"queued":    TaskIdle,
	"scheduled": TaskIdle,
	"running":   TaskRunning,
	"started":   TaskRunning,
	"success":   TaskSuccess,
	"done":      TaskSuccess,
	"completed": TaskSuccess,
	"failed":    TaskFailed,
	"error":     TaskFailed,
}

// ParseTaskStatus maps backend vocabulary onto the closed task status set.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	status, ok := taskStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}
