package backend

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"trailarr/internal/api"
	"trailarr/internal/model"
	"trailarr/internal/services"
)

// ExtraRef identifies one extra of one media item.
type ExtraRef struct {
	Kind      model.Kind
	MediaID   int
	YoutubeID string
	// ExtraType and ExtraTitle are required for downloads and blacklist removal.
	ExtraType  string
	ExtraTitle string
}

func validateMedia(operation string, kind model.Kind, mediaID int) error {
	switch {
	case !kind.Valid():
		return services.Wrap(services.ErrValidation, "backend", operation, "media kind is required", model.ErrUnknownKind)
	case mediaID <= 0:
		return services.Wrap(services.ErrValidation, "backend", operation, "media id must be positive", nil)
	}
	return nil
}

func (r ExtraRef) validate(operation string, needDetails bool) error {
	if err := validateMedia(operation, r.Kind, r.MediaID); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(r.YoutubeID) == "":
		return services.Wrap(services.ErrValidation, "backend", operation, "youtube id is required", errEmptyArgument)
	case needDetails && (strings.TrimSpace(r.ExtraType) == "" || strings.TrimSpace(r.ExtraTitle) == ""):
		return services.Wrap(services.ErrValidation, "backend", operation, "extra type and title are required", errEmptyArgument)
	}
	return nil
}

type extraBody struct {
	MediaType  string `json:"mediaType"`
	MediaID    int    `json:"mediaId"`
	ExtraType  string `json:"extraType,omitempty"`
	ExtraTitle string `json:"extraTitle,omitempty"`
	YoutubeID  string `json:"youtubeId"`
}

func (r ExtraRef) body() extraBody {
	return extraBody{
		MediaType:  r.Kind.APIValue(),
		MediaID:    r.MediaID,
		ExtraType:  strings.TrimSpace(r.ExtraType),
		ExtraTitle: strings.TrimSpace(r.ExtraTitle),
		YoutubeID:  strings.TrimSpace(r.YoutubeID),
	}
}

// Media lists the movies or series the backend tracks.
func (c *Client) Media(ctx context.Context, kind model.Kind) ([]model.Media, error) {
	if !kind.Valid() {
		return nil, services.Wrap(services.ErrValidation, "backend", "list media", "", model.ErrUnknownKind)
	}
	body, err := c.do(ctx, call{route: RouteMediaList, params: map[string]string{"kind": kind.PathSegment()}})
	if err != nil {
		return nil, err
	}
	batch, err := api.ParseMedia(kind, body)
	if err != nil {
		return nil, err
	}
	c.logDropped(ctx, RouteMediaList, batch.Dropped)
	return batch.Items, nil
}

// Movies lists the movie catalog.
func (c *Client) Movies(ctx context.Context) ([]model.Media, error) {
	return c.Media(ctx, model.Movie)
}

// Series lists the series catalog.
func (c *Client) Series(ctx context.Context) ([]model.Media, error) {
	return c.Media(ctx, model.Series)
}

// Extras lists the extras known for one media item, with their download status.
func (c *Client) Extras(ctx context.Context, kind model.Kind, mediaID int) ([]model.Extra, error) {
	if err := validateMedia("list extras", kind, mediaID); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, call{
		route:  RouteExtrasList,
		params: map[string]string{"kind": kind.PathSegment(), "id": strconv.Itoa(mediaID)},
	})
	if err != nil {
		return nil, err
	}
	batch, err := api.ParseExtras(kind, mediaID, body)
	if err != nil {
		return nil, err
	}
	c.logDropped(ctx, RouteExtrasList, batch.Dropped)
	return batch.Items, nil
}

// Download asks the backend to queue an extra. It returns the status the
// backend acknowledged, normally "queued".
func (c *Client) Download(ctx context.Context, ref ExtraRef) (model.ExtraStatus, error) {
	if err := ref.validate("download extra", true); err != nil {
		return "", err
	}
	body, err := c.do(ctx, call{route: RouteExtrasDownload, body: ref.body()})
	if err != nil {
		return "", err
	}
	status, ok := model.ParseExtraStatus(statusReply(body))
	if !ok || status == model.ExtraNotDownloaded {
		status = model.ExtraQueued
	}
	return status, nil
}

// DeleteExtra removes a downloaded extra from disk.
func (c *Client) DeleteExtra(ctx context.Context, ref ExtraRef) error {
	if err := ref.validate("delete extra", false); err != nil {
		return err
	}
	_, err := c.do(ctx, call{route: RouteExtrasDelete, body: ref.body()})
	return err
}

// Blacklist lists extras the backend refused or failed to download.
func (c *Client) Blacklist(ctx context.Context) ([]model.BlacklistEntry, error) {
	body, err := c.do(ctx, call{route: RouteBlacklistList})
	if err != nil {
		return nil, err
	}
	batch, err := api.ParseBlacklist(body)
	if err != nil {
		return nil, err
	}
	c.logDropped(ctx, RouteBlacklistList, batch.Dropped)
	return batch.Items, nil
}

// RemoveFromBlacklist clears a blacklist entry so the extra can be retried.
func (c *Client) RemoveFromBlacklist(ctx context.Context, ref ExtraRef) error {
	if err := ref.validate("remove blacklist entry", true); err != nil {
		return err
	}
	_, err := c.do(ctx, call{route: RouteBlacklistRemove, body: ref.body()})
	return err
}

// Tasks lists the scheduled tasks with their last and next execution.
func (c *Client) Tasks(ctx context.Context) ([]model.TaskSchedule, error) {
	body, err := c.do(ctx, call{route: RouteTasksStatus})
	if err != nil {
		return nil, err
	}
	batch, err := api.ParseTasks(body)
	if err != nil {
		return nil, err
	}
	c.logDropped(ctx, RouteTasksStatus, batch.Dropped)
	return batch.Items, nil
}

// RunTask forces an immediate run of a scheduled task.
func (c *Client) RunTask(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return services.Wrap(services.ErrValidation, "backend", "run task", "task id is required", errEmptyArgument)
	}
	_, err := c.do(ctx, call{route: RouteTasksForce, body: map[string]string{"taskId": taskID}})
	return err
}

// Queue lists the download queue.
func (c *Client) Queue(ctx context.Context) ([]model.QueueEntry, error) {
	body, err := c.do(ctx, call{route: RouteTasksQueue})
	if err != nil {
		return nil, err
	}
	batch, err := api.ParseQueue(body)
	if err != nil {
		return nil, err
	}
	c.logDropped(ctx, RouteTasksQueue, batch.Dropped)
	return batch.Items, nil
}

// BatchStatus looks up the current status of several extras at once.
func (c *Client) BatchStatus(ctx context.Context, youtubeIDs []string) ([]model.StatusUpdate, error) {
	ids := make([]string, 0, len(youtubeIDs))
	for _, id := range youtubeIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	body, err := c.do(ctx, call{route: RouteExtrasStatus, body: map[string][]string{"youtubeIds": ids}})
	if err != nil {
		return nil, err
	}
	batch, err := api.ParseBatchStatus(body, model.SourcePoll)
	if err != nil {
		return nil, err
	}
	c.logDropped(ctx, RouteExtrasStatus, batch.Dropped)
	return batch.Items, nil
}

// Settings returns one settings section as generic JSON values.
func (c *Client) Settings(ctx context.Context, section string) (map[string]any, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return nil, services.Wrap(services.ErrValidation, "backend", "get settings", "section is required", errEmptyArgument)
	}
	body, err := c.do(ctx, call{route: RouteSettingsGet, params: map[string]string{"section": section}})
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, services.Wrap(services.ErrMalformed, "backend", "get settings", section, err)
	}
	return values, nil
}

// SaveSettings writes values into one settings section.
func (c *Client) SaveSettings(ctx context.Context, section string, values map[string]any) error {
	section = strings.TrimSpace(section)
	if section == "" {
		return services.Wrap(services.ErrValidation, "backend", "save settings", "section is required", errEmptyArgument)
	}
	_, err := c.do(ctx, call{route: RouteSettingsSave, params: map[string]string{"section": section}, body: values})
	return err
}
