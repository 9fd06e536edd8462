package livesync

import (
	"context"
	"errors"

	"trailarr/internal/api"
	"trailarr/internal/model"
)

// Feed binds a Synchronizer to one backend resource. T is the item kept
// locally and U the update applied to it.
type Feed[T, U any] struct {
	Topic api.Topic
	// URL is the push channel address.
	URL       string
	ItemKey   func(T) string
	UpdateKey func(U) string
	// Apply merges an update into an item and reports whether it changed.
	Apply func(*T, U) bool
	// Decode turns one push message into updates.
	Decode func([]byte) ([]U, error)
	// Poll fetches the resource and returns it as updates.
	Poll func(context.Context) ([]U, error)
	// Seq optionally returns the ordering number of an update; zero is unordered.
	Seq func(U) uint64
}

func (f Feed[T, U]) validate() error {
	switch {
	case f.Topic == "":
		return errors.New("feed topic is required")
	case f.ItemKey == nil, f.UpdateKey == nil, f.Apply == nil:
		return errors.New("feed key and apply functions are required")
	case f.Decode == nil, f.Poll == nil:
		return errors.New("feed decode and poll functions are required")
	}
	return nil
}

// PushSource locates push channels.
type PushSource interface {
	WebSocketURL(topic api.Topic) string
}

// ExtrasSource is the backend surface ExtrasFeed needs.
type ExtrasSource interface {
	PushSource
	Extras(ctx context.Context, kind model.Kind, mediaID int) ([]model.Extra, error)
}

// BlacklistSource is the backend surface BlacklistFeed needs.
type BlacklistSource interface {
	PushSource
	Blacklist(ctx context.Context) ([]model.BlacklistEntry, error)
}

// TasksSource is the backend surface TasksFeed needs.
type TasksSource interface {
	PushSource
	Tasks(ctx context.Context) ([]model.TaskSchedule, error)
}

func statusKey(u model.StatusUpdate) string { return u.Key }

func statusSeq(u model.StatusUpdate) uint64 { return u.Seq }

func decodeQueueUpdates(data []byte) ([]model.StatusUpdate, error) {
	event, err := api.ParseEvent(api.TopicDownloadQueue, data)
	if err != nil {
		return nil, err
	}
	return event.Updates, nil
}

// ExtrasFeed follows the extras of one media item through the download
// queue channel. Polling re-fetches the item's extras.
func ExtrasFeed(src ExtrasSource, kind model.Kind, mediaID int) Feed[model.Extra, model.StatusUpdate] {
	return Feed[model.Extra, model.StatusUpdate]{
		Topic:     api.TopicDownloadQueue,
		URL:       src.WebSocketURL(api.TopicDownloadQueue),
		ItemKey:   model.Extra.Key,
		UpdateKey: statusKey,
		Apply: func(extra *model.Extra, u model.StatusUpdate) bool {
			return u.ApplyTo(&extra.Status, &extra.Reason)
		},
		Decode: decodeQueueUpdates,
		Poll: func(ctx context.Context) ([]model.StatusUpdate, error) {
			extras, err := src.Extras(ctx, kind, mediaID)
			if err != nil {
				return nil, err
			}
			return api.PolledUpdates(extras), nil
		},
		Seq: statusSeq,
	}
}

// BlacklistFeed follows blacklist entries through the download queue
// channel, so an entry that is retried and succeeds shows as downloaded.
// Polling re-fetches the blacklist.
func BlacklistFeed(src BlacklistSource) Feed[model.BlacklistEntry, model.StatusUpdate] {
	return Feed[model.BlacklistEntry, model.StatusUpdate]{
		Topic:     api.TopicDownloadQueue,
		URL:       src.WebSocketURL(api.TopicDownloadQueue),
		ItemKey:   model.BlacklistEntry.Key,
		UpdateKey: statusKey,
		Apply: func(entry *model.BlacklistEntry, u model.StatusUpdate) bool {
			return u.ApplyTo(&entry.Status, &entry.Reason)
		},
		Decode: decodeQueueUpdates,
		Poll: func(ctx context.Context) ([]model.StatusUpdate, error) {
			entries, err := src.Blacklist(ctx)
			if err != nil {
				return nil, err
			}
			extras := make([]model.Extra, 0, len(entries))
			for _, entry := range entries {
				extras = append(extras, entry.Extra)
			}
			return api.PolledUpdates(extras), nil
		},
		Seq: statusSeq,
	}
}

// TasksFeed follows the scheduled tasks through the tasks channel. Polling
// re-fetches the schedule list.
func TasksFeed(src TasksSource) Feed[model.TaskSchedule, model.TaskSchedule] {
	return Feed[model.TaskSchedule, model.TaskSchedule]{
		Topic:     api.TopicTasks,
		URL:       src.WebSocketURL(api.TopicTasks),
		ItemKey:   model.TaskSchedule.Key,
		UpdateKey: model.TaskSchedule.Key,
		Apply:     applyTask,
		Decode: func(data []byte) ([]model.TaskSchedule, error) {
			event, err := api.ParseEvent(api.TopicTasks, data)
			if err != nil {
				return nil, err
			}
			return event.Tasks, nil
		},
		Poll: src.Tasks,
	}
}

// applyTask overwrites the run state of a task. Timing fields the update
// leaves empty keep their current value.
func applyTask(task *model.TaskSchedule, u model.TaskSchedule) bool {
	changed := false
	if task.Status != u.Status {
		task.Status = u.Status
		changed = true
	}
	if !u.LastExecution.IsZero() && !task.LastExecution.Equal(u.LastExecution) {
		task.LastExecution = u.LastExecution
		changed = true
	}
	if !u.NextExecution.IsZero() && !task.NextExecution.Equal(u.NextExecution) {
		task.NextExecution = u.NextExecution
		changed = true
	}
	if u.LastDuration > 0 && task.LastDuration != u.LastDuration {
		task.LastDuration = u.LastDuration
		changed = true
	}
	return changed
}
