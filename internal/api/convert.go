package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"trailarr/internal/model"
	"trailarr/internal/services"
)

// Batch is a normalized collection plus the number of records that were
// dropped because they could not be normalized.
type Batch[T any] struct {
	Items   []T
	Dropped int
}

func malformed(operation string, err error) error {
	return services.Wrap(services.ErrMalformed, "api", operation, "", err)
}

// collection extracts the record list from a bare array or from the first
// envelope key present on an object.
func collection(data []byte, envelopes ...string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		rec, ok := decodeRecord(trimmed)
		if !ok {
			return nil, errors.New("invalid object")
		}
		for _, key := range envelopes {
			value, ok := rec.raw(key)
			if !ok {
				continue
			}
			var list []json.RawMessage
			if err := json.Unmarshal(value, &list); err != nil {
				return nil, fmt.Errorf("envelope %q is not a list: %w", key, err)
			}
			return list, nil
		}
		for _, key := range envelopes {
			if _, present := rec[canonicalKey(key)]; present {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("object has none of %v", envelopes)
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

func parseBatch[T any](operation string, data []byte, envelopes []string, convert func(record) (T, bool)) (Batch[T], error) {
	raws, err := collection(data, envelopes...)
	if err != nil {
		return Batch[T]{}, malformed(operation, err)
	}
	batch := Batch[T]{Items: make([]T, 0, len(raws))}
	for _, raw := range raws {
		rec, ok := decodeRecord(raw)
		if !ok {
			batch.Dropped++
			continue
		}
		item, ok := convert(rec)
		if !ok {
			batch.Dropped++
			continue
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

// ErrorMessage reports the message of an {"error": "..."} body.
func ErrorMessage(data []byte) (string, bool) {
	rec, ok := decodeRecord(bytes.TrimSpace(data))
	if !ok {
		return "", false
	}
	msg := rec.text("error")
	if msg == "" {
		return "", false
	}
	return msg, true
}

// ParseMedia normalizes a movie or series listing.
func ParseMedia(kind model.Kind, data []byte) (Batch[model.Media], error) {
	return parseBatch("decode media", data, []string{"items", kind.PathSegment(), "media"}, func(rec record) (model.Media, bool) {
		id, ok := rec.integer("id", "mediaId")
		if !ok || id <= 0 {
			return model.Media{}, false
		}
		title := rec.text("title", "mediaTitle")
		if title == "" {
			return model.Media{}, false
		}
		year, _ := rec.integer("year")
		return model.Media{
			ID:              id,
			Kind:            kind,
			Title:           title,
			SortTitle:       rec.text("sortTitle"),
			AlternateTitles: rec.strs("alternateTitles", "alternativeTitles", "aka"),
			Overview:        rec.text("overview", "plot"),
			Year:            year,
			Path:            rec.text("path", "folderPath"),
		}, true
	})
}

// ParseExtras normalizes the extras of one media item. Records that name a
// different owner keep the owner the backend sent.
func ParseExtras(kind model.Kind, mediaID int, data []byte) (Batch[model.Extra], error) {
	return parseBatch("decode extras", data, []string{"extras", "items"}, func(rec record) (model.Extra, bool) {
		extra, ok := extraFromRecord(rec, model.ExtraNotDownloaded)
		if !ok {
			return model.Extra{}, false
		}
		if !extra.MediaKind.Valid() {
			extra.MediaKind = kind
		}
		if extra.MediaID == 0 {
			extra.MediaID = mediaID
		}
		return extra, true
	})
}

// ParseBlacklist normalizes the blacklist listing.
func ParseBlacklist(data []byte) (Batch[model.BlacklistEntry], error) {
	return parseBatch("decode blacklist", data, []string{"items", "blacklist", "extras"}, func(rec record) (model.BlacklistEntry, bool) {
		extra, ok := extraFromRecord(rec, model.ExtraRejected)
		if !ok || !extra.MediaKind.Valid() {
			return model.BlacklistEntry{}, false
		}
		return model.BlacklistEntry{Extra: extra, MediaTitle: rec.text("mediaTitle")}, true
	})
}

func extraFromRecord(rec record, fallback model.ExtraStatus) (model.Extra, bool) {
	youtubeID := rec.text("youtubeId", "ytId")
	if youtubeID == "" {
		return model.Extra{}, false
	}
	status := fallback
	if raw, present := rec.str("status"); present {
		parsed, ok := model.ParseExtraStatus(raw)
		if !ok {
			return model.Extra{}, false
		}
		status = parsed
	}
	var kind model.Kind
	if raw := rec.text("mediaType"); raw != "" {
		parsed, err := model.ParseKind(raw)
		if err != nil {
			return model.Extra{}, false
		}
		kind = parsed
	}
	mediaID, _ := rec.integer("mediaId")
	return model.Extra{
		MediaKind: kind,
		MediaID:   mediaID,
		YoutubeID: youtubeID,
		Title:     rec.text("extraTitle", "title"),
		Type:      rec.text("extraType", "type"),
		FileName:  rec.text("fileName"),
		Status:    status,
		Reason:    rec.text("reason", "message"),
	}, true
}

// ParseQueue normalizes the download queue listing.
func ParseQueue(data []byte) (Batch[model.QueueEntry], error) {
	return parseBatch("decode queue", data, []string{"queue", "items"}, queueEntryFromRecord)
}

func queueEntryFromRecord(rec record) (model.QueueEntry, bool) {
	youtubeID := rec.text("youtubeId", "ytId")
	if youtubeID == "" {
		return model.QueueEntry{}, false
	}
	status, ok := model.ParseExtraStatus(rec.text("status"))
	if !ok {
		return model.QueueEntry{}, false
	}
	kind, _ := model.ParseKind(rec.text("mediaType"))
	mediaID, _ := rec.integer("mediaId")
	entry := model.QueueEntry{
		MediaKind:  kind,
		MediaID:    mediaID,
		MediaTitle: rec.text("mediaTitle"),
		YoutubeID:  youtubeID,
		ExtraType:  rec.text("extraType", "type"),
		ExtraTitle: rec.text("extraTitle", "title"),
		Status:     status,
		Reason:     rec.text("reason", "message"),
		QueuedAt:   rec.timestamp("queuedAt", "addedAt"),
		StartedAt:  rec.timestamp("startedAt", "startTime"),
		EndedAt:    rec.timestamp("endedAt", "finishedAt", "endTime"),
		Duration:   rec.duration(time.Second, "duration"),
	}
	if entry.Duration == 0 && !entry.StartedAt.IsZero() && entry.EndedAt.After(entry.StartedAt) {
		entry.Duration = entry.EndedAt.Sub(entry.StartedAt)
	}
	return entry, true
}

// ParseTasks normalizes the task scheduler listing. Numeric intervals are
// minutes; numeric durations are seconds.
func ParseTasks(data []byte) (Batch[model.TaskSchedule], error) {
	return parseBatch("decode tasks", data, []string{"schedules", "tasks", "items"}, taskFromRecord)
}

func taskFromRecord(rec record) (model.TaskSchedule, bool) {
	id := rec.text("taskId", "id")
	if id == "" {
		return model.TaskSchedule{}, false
	}
	status, ok := model.ParseTaskStatus(rec.text("status"))
	if !ok {
		return model.TaskSchedule{}, false
	}
	name := rec.text("name", "taskName")
	if name == "" {
		name = id
	}
	return model.TaskSchedule{
		ID:            id,
		Name:          name,
		Interval:      rec.duration(time.Minute, "interval"),
		LastExecution: rec.timestamp("lastExecution", "lastRun"),
		NextExecution: rec.timestamp("nextExecution", "nextRun"),
		LastDuration:  rec.duration(time.Second, "lastDuration"),
		Status:        status,
	}, true
}

// ParseBatchStatus normalizes a batch status lookup. The backend answers
// either with a list of records or with an object mapping youtube ids to a
// status string or record.
func ParseBatchStatus(data []byte, source model.Source) (Batch[model.StatusUpdate], error) {
	if rec, ok := decodeRecord(bytes.TrimSpace(data)); ok {
		if value, ok := rec.raw("statuses"); ok {
			// Keys are youtube ids, which are case sensitive, so they bypass decodeRecord.
			var mapped map[string]json.RawMessage
			if err := json.Unmarshal(value, &mapped); err == nil {
				return statusMap(mapped, source), nil
			}
		}
	}
	return parseBatch("decode batch status", data, []string{"items", "statuses", "extras"}, func(rec record) (model.StatusUpdate, bool) {
		return statusUpdateFromRecord(rec, source, 0)
	})
}

func statusMap(mapped map[string]json.RawMessage, source model.Source) Batch[model.StatusUpdate] {
	var batch Batch[model.StatusUpdate]
	for _, key := range slices.Sorted(maps.Keys(mapped)) {
		value := mapped[key]
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			status, ok := model.ParseExtraStatus(s)
			if !ok {
				batch.Dropped++
				continue
			}
			batch.Items = append(batch.Items, model.StatusUpdate{Key: key, Status: status, Source: source})
			continue
		}
		rec, ok := decodeRecord(value)
		if !ok {
			batch.Dropped++
			continue
		}
		if !rec.has("youtubeId") {
			encoded, _ := json.Marshal(key)
			rec[canonicalKey("youtubeId")] = encoded
		}
		update, ok := statusUpdateFromRecord(rec, source, 0)
		if !ok {
			batch.Dropped++
			continue
		}
		batch.Items = append(batch.Items, update)
	}
	return batch
}

func statusUpdateFromRecord(rec record, source model.Source, seq uint64) (model.StatusUpdate, bool) {
	key := rec.text("youtubeId", "ytId")
	if key == "" {
		return model.StatusUpdate{}, false
	}
	status, ok := model.ParseExtraStatus(rec.text("status"))
	if !ok || !rec.has("status") {
		return model.StatusUpdate{}, false
	}
	if own := rec.sequence("seq", "sequence"); own > 0 {
		seq = own
	}
	update := model.StatusUpdate{Key: key, Status: status, Seq: seq, Source: source}
	if reason, present := rec.str("reason", "message"); present {
		update.Reason = reason
		update.HasReason = true
	}
	return update, true
}

// PolledUpdates turns freshly fetched extras into status updates for merging.
// A polled record is complete, so an absent reason clears the local one.
func PolledUpdates(extras []model.Extra) []model.StatusUpdate {
	updates := make([]model.StatusUpdate, 0, len(extras))
	for _, extra := range extras {
		updates = append(updates, model.StatusUpdate{
			Key:       extra.YoutubeID,
			Status:    extra.Status,
			Reason:    extra.Reason,
			HasReason: true,
			Source:    model.SourcePoll,
		})
	}
	return updates
}
