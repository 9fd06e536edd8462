package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Record is one loosely typed backend JSON object.
type Record = map[string]any

// Request is one call the fake backend received.
type Request struct {
	Method    string
	Path      string
	RequestID string
	Body      []byte
}

type failure struct {
	status  int
	message string
}

type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// FakeBackend is an in-memory Trailarr backend serving the REST endpoints and
// push channels the client uses. Stored records are returned verbatim, so
// tests can exercise the client's field alias handling.
type FakeBackend struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu            sync.Mutex
	media         map[string][]Record
	extras        map[string][]Record
	blacklist     []Record
	tasks         []Record
	queue         []Record
	settings      map[string]Record
	failures      map[string]failure
	delays        map[string]time.Duration
	hits          map[string]int
	requests      []Request
	forced        []string
	rejectSockets bool
	subscribers   map[string][]*subscriber
}

// NewFakeBackend starts a fake backend and registers cleanup with t.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeBackend{
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		media:       map[string][]Record{"movies": {}, "series": {}},
		extras:      map[string][]Record{},
		settings:    map[string]Record{},
		failures:    map[string]failure{},
		delays:      map[string]time.Duration{},
		hits:        map[string]int{},
		subscribers: map[string][]*subscriber{},
	}
	f.server = httptest.NewServer(f.router())
	t.Cleanup(func() {
		f.DropSubscribers("")
		f.server.Close()
	})
	return f
}

// URL is the backend base URL.
func (f *FakeBackend) URL() string {
	return f.server.URL
}

func (f *FakeBackend) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), f.record)

	api := r.Group("/api")
	api.GET("/movies", f.listMedia("movies"))
	api.GET("/series", f.listMedia("series"))
	api.GET("/movies/:id/extras", f.listExtras("movies"))
	api.GET("/series/:id/extras", f.listExtras("series"))
	api.POST("/extras/download", f.download)
	api.POST("/extras/delete", f.deleteExtra)
	api.POST("/extras/status/batch", f.batchStatus)
	api.GET("/blacklist/extras", f.listBlacklist)
	api.POST("/blacklist/extras/remove", f.removeBlacklist)
	api.GET("/tasks/status", f.listTasks)
	api.POST("/tasks/force", f.forceTask)
	api.GET("/tasks/queue", f.listQueue)
	api.GET("/settings/:section", f.getSettings)
	api.POST("/settings/:section", f.saveSettings)

	r.GET("/ws/:topic", f.subscribe)
	return r
}

// record logs the request and applies injected failures and delays.
func (f *FakeBackend) record(c *gin.Context) {
	body, _ := c.GetRawData()
	c.Request.Body = http.NoBody
	path := c.Request.URL.Path

	f.mu.Lock()
	f.hits[path]++
	f.requests = append(f.requests, Request{
		Method:    c.Request.Method,
		Path:      path,
		RequestID: c.GetHeader("X-Request-ID"),
		Body:      body,
	})
	fail, failing := f.failures[path]
	delay := f.delays[path]
	f.mu.Unlock()

	c.Set("body", body)
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if failing {
		c.AbortWithStatusJSON(fail.status, gin.H{"error": fail.message})
		return
	}
	c.Next()
}

func bodyOf(c *gin.Context) []byte {
	if raw, ok := c.Get("body"); ok {
		if data, ok := raw.([]byte); ok {
			return data
		}
	}
	return nil
}

func bindBody(c *gin.Context, dst any) bool {
	if err := json.Unmarshal(bodyOf(c), dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}
	return true
}

func extrasKey(collection string, id int) string {
	return collection + "/" + strconv.Itoa(id)
}

func collectionFor(mediaType string) string {
	if mediaType == "tv" || mediaType == "series" {
		return "series"
	}
	return "movies"
}

func (f *FakeBackend) listMedia(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		items := slices.Clone(f.media[collection])
		f.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func (f *FakeBackend) listExtras(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		f.mu.Lock()
		extras, ok := f.extras[extrasKey(collection, id)]
		extras = cloneRecords(extras)
		f.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"extras": extras})
	}
}

type extraRequest struct {
	MediaType  string `json:"mediaType"`
	MediaID    int    `json:"mediaId"`
	ExtraType  string `json:"extraType"`
	ExtraTitle string `json:"extraTitle"`
	YoutubeID  string `json:"youtubeId"`
}

func (f *FakeBackend) download(c *gin.Context) {
	var req extraRequest
	if !bindBody(c, &req) {
		return
	}
	if req.YoutubeID == "" || req.ExtraType == "" || req.ExtraTitle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	f.mu.Lock()
	f.setStatusLocked(extrasKey(collectionFor(req.MediaType), req.MediaID), req.YoutubeID, "queued")
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "queued"})
}

func (f *FakeBackend) deleteExtra(c *gin.Context) {
	var req extraRequest
	if !bindBody(c, &req) {
		return
	}
	f.mu.Lock()
	found := f.setStatusLocked(extrasKey(collectionFor(req.MediaType), req.MediaID), req.YoutubeID, "missing")
	f.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Extra not found in collection"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (f *FakeBackend) batchStatus(c *gin.Context) {
	var req struct {
		YoutubeIDs []string `json:"youtubeIds"`
	}
	if !bindBody(c, &req) {
		return
	}
	statuses := gin.H{}
	f.mu.Lock()
	for _, records := range f.extras {
		for _, rec := range records {
			id := fmt.Sprint(youtubeIDOf(rec))
			if slices.Contains(req.YoutubeIDs, id) {
				statuses[id] = statusOf(rec)
			}
		}
	}
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

func (f *FakeBackend) listBlacklist(c *gin.Context) {
	f.mu.Lock()
	items := cloneRecords(f.blacklist)
	f.mu.Unlock()
	c.JSON(http.StatusOK, items)
}

func (f *FakeBackend) removeBlacklist(c *gin.Context) {
	var req extraRequest
	if !bindBody(c, &req) {
		return
	}
	f.mu.Lock()
	before := len(f.blacklist)
	f.blacklist = slices.DeleteFunc(f.blacklist, func(rec Record) bool {
		return fmt.Sprint(youtubeIDOf(rec)) == req.YoutubeID
	})
	removed := len(f.blacklist) != before
	f.mu.Unlock()
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blacklist entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (f *FakeBackend) listTasks(c *gin.Context) {
	f.mu.Lock()
	items := cloneRecords(f.tasks)
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"schedules": items})
}

func (f *FakeBackend) forceTask(c *gin.Context) {
	var req struct {
		TaskID string `json:"taskId"`
	}
	if !bindBody(c, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.tasks {
		if fmt.Sprint(rec["taskId"]) == req.TaskID {
			rec["status"] = "running"
			f.forced = append(f.forced, req.TaskID)
			c.JSON(http.StatusOK, gin.H{"status": "started"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
}

func (f *FakeBackend) listQueue(c *gin.Context) {
	f.mu.Lock()
	items := cloneRecords(f.queue)
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"queue": items})
}

func (f *FakeBackend) getSettings(c *gin.Context) {
	f.mu.Lock()
	values, ok := f.settings[c.Param("section")]
	values = cloneRecord(values)
	f.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown settings section"})
		return
	}
	c.JSON(http.StatusOK, values)
}

func (f *FakeBackend) saveSettings(c *gin.Context) {
	var values Record
	if !bindBody(c, &values) {
		return
	}
	section := c.Param("section")
	f.mu.Lock()
	current, ok := f.settings[section]
	if ok {
		for key, value := range values {
			current[key] = value
		}
	}
	f.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown settings section"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (f *FakeBackend) subscribe(c *gin.Context) {
	topic := c.Param("topic")
	f.mu.Lock()
	reject := f.rejectSockets
	f.mu.Unlock()
	if reject {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "websocket disabled"})
		return
	}
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	sub := &subscriber{conn: conn}
	f.mu.Lock()
	f.subscribers[topic] = append(f.subscribers[topic], sub)
	f.mu.Unlock()

	// Drain until the client goes away so close frames are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.removeSubscriber(topic, sub)
	_ = conn.Close()
}

func (f *FakeBackend) removeSubscriber(topic string, sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[topic] = slices.DeleteFunc(f.subscribers[topic], func(s *subscriber) bool { return s == sub })
}

// setStatusLocked updates an extra's status; f.mu must be held.
func (f *FakeBackend) setStatusLocked(key, youtubeID, status string) bool {
	for _, rec := range f.extras[key] {
		if fmt.Sprint(youtubeIDOf(rec)) == youtubeID {
			for _, field := range []string{"Status", "status"} {
				if _, ok := rec[field]; ok {
					rec[field] = status
					return true
				}
			}
			rec["status"] = status
			return true
		}
	}
	return false
}

var youtubeIDFields = []string{"youtubeId", "YoutubeId", "YouTubeID", "youtube_id"}

func youtubeIDOf(rec Record) any {
	for _, field := range youtubeIDFields {
		if value, ok := rec[field]; ok {
			return value
		}
	}
	return ""
}

func statusOf(rec Record) any {
	if value, ok := rec["Status"]; ok {
		return value
	}
	return rec["status"]
}

func cloneRecord(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for key, value := range rec {
		out[key] = value
	}
	return out
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, cloneRecord(rec))
	}
	return out
}

// SetMedia replaces a catalog collection ("movies" or "series").
func (f *FakeBackend) SetMedia(collection string, records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media[collection] = cloneRecords(records)
}

// SetExtras replaces the extras of one media item.
func (f *FakeBackend) SetExtras(collection string, mediaID int, records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extras[extrasKey(collection, mediaID)] = cloneRecords(records)
}

// SetExtraStatus changes the stored status of one extra, as a download
// progressing on the backend would.
func (f *FakeBackend) SetExtraStatus(collection string, mediaID int, youtubeID, status string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setStatusLocked(extrasKey(collection, mediaID), youtubeID, status)
}

// SetBlacklist replaces the blacklist.
func (f *FakeBackend) SetBlacklist(records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist = cloneRecords(records)
}

// SetTasks replaces the task schedules.
func (f *FakeBackend) SetTasks(records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = cloneRecords(records)
}

// SetQueue replaces the download queue.
func (f *FakeBackend) SetQueue(records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = cloneRecords(records)
}

// SetSettings replaces one settings section.
func (f *FakeBackend) SetSettings(section string, values Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[section] = cloneRecord(values)
}

// Settings returns a copy of one settings section.
func (f *FakeBackend) Settings(section string) Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRecord(f.settings[section])
}

// Fail makes every request to path answer with status and an error body.
func (f *FakeBackend) Fail(path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = failure{status: status, message: message}
}

// Recover removes an injected failure.
func (f *FakeBackend) Recover(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, path)
}

// Delay holds every request to path for d before answering.
func (f *FakeBackend) Delay(path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[path] = d
}

// Hits counts requests received for path.
func (f *FakeBackend) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// Requests returns every request received so far.
func (f *FakeBackend) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// LastRequest returns the most recent request for path.
func (f *FakeBackend) LastRequest(path string) (Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Path == path {
			return f.requests[i], true
		}
	}
	return Request{}, false
}

// ForcedTasks lists task ids run through the force endpoint.
func (f *FakeBackend) ForcedTasks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.forced)
}

// RejectSockets makes push channel upgrades fail with 503 while set.
func (f *FakeBackend) RejectSockets(reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectSockets = reject
}

// Subscribers counts open push connections for topic.
func (f *FakeBackend) Subscribers(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[topic])
}

// WaitForSubscribers blocks until topic has at least n open connections.
func (f *FakeBackend) WaitForSubscribers(ctx context.Context, topic string, n int) bool {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if f.Subscribers(topic) >= n {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// Push sends payload, JSON encoded unless it is already []byte or string, to
// every subscriber of topic. It returns the number of deliveries.
func (f *FakeBackend) Push(topic string, payload any) int {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return 0
		}
		data = encoded
	}
	f.mu.Lock()
	subs := slices.Clone(f.subscribers[topic])
	f.mu.Unlock()
	delivered := 0
	for _, sub := range subs {
		if err := sub.write(data); err == nil {
			delivered++
		}
	}
	return delivered
}

// DropSubscribers closes every push connection for topic, or for all topics
// when topic is empty, simulating a channel error.
func (f *FakeBackend) DropSubscribers(topic string) {
	f.mu.Lock()
	var subs []*subscriber
	for name, list := range f.subscribers {
		if topic == "" || name == topic {
			subs = append(subs, list...)
			f.subscribers[name] = nil
		}
	}
	f.mu.Unlock()
	for _, sub := range subs {
		_ = sub.conn.Close()
	}
}

// Paths of the endpoints tests commonly inject failures into.
const (
	PathMovies    = "/api/movies"
	PathSeries    = "/api/series"
	PathBlacklist = "/api/blacklist/extras"
	PathTasks     = "/api/tasks/status"
	PathQueue     = "/api/tasks/queue"
)

// ExtrasPath is the extras endpoint for one media item.
func ExtrasPath(collection string, mediaID int) string {
	return "/api/" + strings.TrimSuffix(collection, "/") + "/" + strconv.Itoa(mediaID) + "/extras"
}
