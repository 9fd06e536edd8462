package api

import (
	"errors"
	"slices"
	"strings"

	"trailarr/internal/model"
)

// Topic names one push channel.
type Topic string

const (
	TopicDownloadQueue Topic = "download-queue"
	TopicTasks         Topic = "tasks"
)

// ErrUnrecognizedEvent marks a push message whose tag belongs to no known topic.
var ErrUnrecognizedEvent = errors.New("unrecognized push event")

type topicSpec struct {
	tags        []string
	collections []string
}

var topics = map[Topic]topicSpec{
	TopicDownloadQueue: {
		tags:        []string{"download_queue_update", "download_queue", "queue_update", "queue"},
		collections: []string{"queue", "items"},
	},
	TopicTasks: {
		tags:        []string{"task_status", "task_status_update", "tasks_update", "tasks"},
		collections: []string{"tasks", "schedules"},
	},
}

// Event is one decoded push message.
type Event struct {
	Topic Topic
	Tag   string
	Seq   uint64
	// Updates holds extra status changes from a download-queue event.
	Updates []model.StatusUpdate
	// Queue holds the full entries behind Updates.
	Queue []model.QueueEntry
	// Tasks holds schedules from a tasks event.
	Tasks   []model.TaskSchedule
	Dropped int
}

// ParseEvent decodes a push message received on topic. A message whose tag is
// present but not one the topic publishes is rejected with
// ErrUnrecognizedEvent. An untagged message is accepted when it carries the
// topic's collection.
func ParseEvent(topic Topic, data []byte) (Event, error) {
	spec, ok := topics[topic]
	if !ok {
		return Event{}, malformed("decode event", errors.New("unknown topic "+string(topic)))
	}
	rec, ok := decodeRecord(data)
	if !ok {
		return Event{}, malformed("decode event", errors.New("payload is not an object"))
	}

	tag := strings.ToLower(rec.text("type", "topic", "event"))
	if tag != "" && !slices.Contains(spec.tags, strings.ReplaceAll(tag, "-", "_")) {
		return Event{}, malformed("decode event", ErrUnrecognizedEvent)
	}
	if tag == "" && !rec.has(spec.collections...) {
		return Event{}, malformed("decode event", ErrUnrecognizedEvent)
	}

	event := Event{Topic: topic, Tag: tag, Seq: rec.sequence("seq", "sequence")}
	switch topic {
	case TopicDownloadQueue:
		raws, err := collection(data, spec.collections...)
		if err != nil {
			return Event{}, malformed("decode event", err)
		}
		for _, raw := range raws {
			item, ok := decodeRecord(raw)
			if !ok {
				event.Dropped++
				continue
			}
			update, ok := statusUpdateFromRecord(item, model.SourcePush, event.Seq)
			if !ok {
				event.Dropped++
				continue
			}
			event.Updates = append(event.Updates, update)
			if entry, ok := queueEntryFromRecord(item); ok {
				event.Queue = append(event.Queue, entry)
			}
		}
	case TopicTasks:
		batch, err := parseBatch("decode event", data, spec.collections, taskUpdateFromRecord)
		if err != nil {
			return Event{}, err
		}
		event.Tasks = batch.Items
		event.Dropped = batch.Dropped
	}
	return event, nil
}

// taskUpdateFromRecord is taskFromRecord for push records, which must carry a
// status so a partial update cannot reset a running task to idle.
func taskUpdateFromRecord(rec record) (model.TaskSchedule, bool) {
	if !rec.has("status") {
		return model.TaskSchedule{}, false
	}
	return taskFromRecord(rec)
}
