package api_test

import (
	"errors"
	"testing"

	"trailarr/internal/api"
	"trailarr/internal/model"
	"trailarr/internal/services"
)

func TestParseEventDownloadQueue(t *testing.T) {
	payload := []byte(`{"type": "download_queue_update", "seq": 7, "queue": [
		{"YouTubeID": "a", "Status": "downloaded", "mediaType": "movie", "mediaId": 1},
		{"youtubeId": "b", "status": "failed", "reason": "Did not get any data blocks"},
		{"youtubeId": "c"}
	]}`)
	event, err := api.ParseEvent(api.TopicDownloadQueue, payload)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if event.Seq != 7 || len(event.Updates) != 2 || event.Dropped != 1 {
		t.Fatalf("unexpected event %+v", event)
	}
	first := event.Updates[0]
	if first.Key != "a" || first.Status != model.ExtraDownloaded || first.HasReason || first.Seq != 7 || first.Source != model.SourcePush {
		t.Fatalf("unexpected first update %+v", first)
	}
	if !event.Updates[1].HasReason || event.Updates[1].Reason != "Did not get any data blocks" {
		t.Fatalf("unexpected second update %+v", event.Updates[1])
	}
	if len(event.Queue) != 2 {
		t.Fatalf("expected queue entries alongside updates, got %d", len(event.Queue))
	}
}

func TestParseEventUntaggedQueue(t *testing.T) {
	event, err := api.ParseEvent(api.TopicDownloadQueue, []byte(`{"queue": [{"YouTubeID": "a", "Status": "downloaded"}]}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if len(event.Updates) != 1 || event.Updates[0].Key != "a" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestParseEventRejectsForeignOrBrokenMessages(t *testing.T) {
	cases := []struct {
		topic   api.Topic
		payload string
	}{
		{api.TopicDownloadQueue, `{"type": "task_status", "tasks": []}`},
		{api.TopicDownloadQueue, `{"hello": "world"}`},
		{api.TopicTasks, `{"queue": []}`},
		{api.TopicTasks, `not json`},
		{api.TopicDownloadQueue, `{"type": "queue", "queue": "nope"}`},
		{api.Topic("other"), `{}`},
	}
	for _, tc := range cases {
		if _, err := api.ParseEvent(tc.topic, []byte(tc.payload)); !errors.Is(err, services.ErrMalformed) {
			t.Fatalf("%s %s: expected ErrMalformed, got %v", tc.topic, tc.payload, err)
		}
	}
	_, err := api.ParseEvent(api.TopicDownloadQueue, []byte(`{"type": "ping"}`))
	if !errors.Is(err, api.ErrUnrecognizedEvent) {
		t.Fatalf("expected ErrUnrecognizedEvent, got %v", err)
	}
}

func TestParseEventTasks(t *testing.T) {
	payload := []byte(`{"type": "task_status", "tasks": [{"taskId": "radarr", "name": "Sync Radarr", "interval": 15, "status": "running"}]}`)
	event, err := api.ParseEvent(api.TopicTasks, payload)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if len(event.Tasks) != 1 || event.Tasks[0].Status != model.TaskRunning {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestParseEventTasksDropsRecordsWithoutStatus(t *testing.T) {
	payload := []byte(`{"type": "task_status", "tasks": [{"taskId": "radarr", "lastDuration": 12}, {"taskId": "sonarr", "status": "success"}]}`)
	event, err := api.ParseEvent(api.TopicTasks, payload)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if len(event.Tasks) != 1 || event.Tasks[0].ID != "sonarr" || event.Dropped != 1 {
		t.Fatalf("unexpected event %+v", event)
	}
}
