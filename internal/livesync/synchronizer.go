package livesync

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"trailarr/internal/api"
	"trailarr/internal/config"
	"trailarr/internal/logging"
	"trailarr/internal/services"
)

// State is the connection phase of a Synchronizer.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateLive       State = "live"
	StatePolling    State = "polling"
	StateClosed     State = "closed"
)

// Observer receives synchronizer activity for instrumentation.
type Observer interface {
	ObservePush(topic string)
	ObserveDropped(topic string)
	ObservePoll(topic string, err error)
	ObserveDial(topic string, err error)
	ObserveState(topic string, state State)
}

// Options tunes a Synchronizer.
type Options struct {
	PollInterval      time.Duration
	ReconnectInterval time.Duration
	// RequestTimeout bounds each poll request.
	RequestTimeout time.Duration
	// FailureThreshold is the number of consecutive poll failures before
	// OnError is called.
	FailureThreshold int
	Dialer           Dialer
	Logger           *slog.Logger
	Observer         Observer
}

// OptionsFromConfig derives synchronizer timing from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		PollInterval:      cfg.PollInterval(),
		ReconnectInterval: cfg.ReconnectInterval(),
		RequestTimeout:    cfg.PollTimeout(),
		FailureThreshold:  cfg.Sync.FailureThreshold,
	}
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.ReconnectInterval <= 0 {
		o.ReconnectInterval = 15 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 3
	}
	if o.Dialer == nil {
		o.Dialer = WebSocketDialer{}
	}
	return o
}

// Synchronizer holds a collection of T and applies updates of type U to it,
// from the push channel while it is open and from polling while it is not.
type Synchronizer[T, U any] struct {
	feed   Feed[T, U]
	opts   Options
	logger *slog.Logger
	id     string

	// notifyMu serializes apply and OnChange so callbacks see changes in order.
	notifyMu sync.Mutex

	mu       sync.Mutex
	items    []T
	index    map[string][]int
	lastSeq  map[string]uint64
	state    State
	failures int
	onChange func([]T)
	onError  func(error)

	running    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	pollCancel context.CancelFunc
	pollDone   chan struct{}
	pollBusy   atomic.Bool
}

// New builds a synchronizer over items. It does nothing until Start.
func New[T, U any](feed Feed[T, U], items []T, opts Options) *Synchronizer[T, U] {
	opts = opts.withDefaults()
	s := &Synchronizer[T, U]{
		feed:    feed,
		opts:    opts,
		id:      uuid.NewString(),
		lastSeq: map[string]uint64{},
		state:   StateIdle,
	}
	s.logger = logging.NewComponentLogger(opts.Logger, "livesync").With(
		logging.Topic(string(feed.Topic)),
		logging.Subscription(s.id),
	)
	s.reset(items)
	return s
}

func (s *Synchronizer[T, U]) reset(items []T) {
	s.items = slices.Clone(items)
	s.index = make(map[string][]int, len(items))
	for i, item := range s.items {
		key := s.feed.ItemKey(item)
		s.index[key] = append(s.index[key], i)
	}
}

// OnChange registers fn to receive a copy of the items after every update
// that changed at least one of them. Register before Start.
func (s *Synchronizer[T, U]) OnChange(fn func([]T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// OnError registers fn to receive poll failures once they reach the failure
// threshold. Register before Start.
func (s *Synchronizer[T, U]) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// ID identifies this synchronizer in logs.
func (s *Synchronizer[T, U]) ID() string {
	return s.id
}

// Topic is the push channel the synchronizer follows.
func (s *Synchronizer[T, U]) Topic() api.Topic {
	return s.feed.Topic
}

// Snapshot returns a copy of the current items.
func (s *Synchronizer[T, U]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// State reports the current connection phase.
func (s *Synchronizer[T, U]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens the push channel in the background. The synchronizer runs
// until ctx is cancelled or Close is called.
func (s *Synchronizer[T, U]) Start(ctx context.Context) error {
	if err := s.feed.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.running:
		return errors.New("synchronizer already running")
	case s.state == StateClosed:
		return errors.New("synchronizer closed")
	}

	ctx = services.WithTopic(ctx, string(s.feed.Topic))
	ctx = services.WithSubscriptionID(ctx, s.id)
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Close stops the push channel and any polling and waits for every
// goroutine to exit. It is safe to call more than once.
func (s *Synchronizer[T, U]) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.running = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.setState(StateClosed)
	return nil
}

func (s *Synchronizer[T, U]) run(ctx context.Context) {
	defer s.wg.Done()
	defer s.stopPolling()

	s.setState(StateConnecting)
	retry := time.NewTimer(0)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-retry.C:
		}

		conn, err := s.dial(ctx)
		if err == nil {
			s.stopPolling()
			s.setState(StateLive)
			s.logger.Info("push channel open")
			s.read(ctx, conn)
			if ctx.Err() != nil {
				return
			}
		}
		s.startPolling(ctx)
		s.setState(StatePolling)
		retry.Reset(s.opts.ReconnectInterval)
	}
}

func (s *Synchronizer[T, U]) dial(ctx context.Context) (Conn, error) {
	conn, err := s.opts.Dialer.Dial(ctx, s.feed.URL)
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveDial(string(s.feed.Topic), err)
	}
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Debug("push channel unavailable", logging.Error(err))
		}
		return nil, err
	}
	return conn, nil
}

// read applies messages until the channel fails or ctx ends.
func (s *Synchronizer[T, U]) read(ctx context.Context, conn Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		_ = conn.Close()
	}()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Info("push channel closed; falling back to polling", logging.Error(err))
			}
			return
		}
		s.handleMessage(data)
	}
}

func (s *Synchronizer[T, U]) handleMessage(data []byte) {
	topic := string(s.feed.Topic)
	if s.opts.Observer != nil {
		s.opts.Observer.ObservePush(topic)
	}
	updates, err := s.feed.Decode(data)
	if err != nil {
		if s.opts.Observer != nil {
			s.opts.Observer.ObserveDropped(topic)
		}
		s.logger.Debug("dropped push payload", logging.Error(err), logging.Int("bytes", len(data)))
		return
	}
	s.apply(updates)
}

// apply merges updates into the items. Updates are matched by key; unknown
// keys are ignored. An update whose sequence number is older than the last
// one applied for its key is dropped.
func (s *Synchronizer[T, U]) apply(updates []U) {
	if len(updates) == 0 {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := false
	for _, update := range updates {
		key := s.feed.UpdateKey(update)
		positions, ok := s.index[key]
		if !ok {
			continue
		}
		if s.feed.Seq != nil {
			if seq := s.feed.Seq(update); seq > 0 {
				if seq < s.lastSeq[key] {
					continue
				}
				s.lastSeq[key] = seq
			}
		}
		for _, pos := range positions {
			if s.feed.Apply(&s.items[pos], update) {
				changed = true
			}
		}
	}
	var snapshot []T
	onChange := s.onChange
	if changed && onChange != nil {
		snapshot = slices.Clone(s.items)
	}
	s.mu.Unlock()

	if snapshot != nil {
		onChange(snapshot)
	}
}

func (s *Synchronizer[T, U]) setState(state State) {
	s.mu.Lock()
	if s.state == state || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveState(string(s.feed.Topic), state)
	}
}

func (s *Synchronizer[T, U]) startPolling(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pollCancel != nil {
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.pollCancel = cancel
	s.pollDone = done

	s.wg.Add(1)
	go s.pollLoop(pollCtx, done)
}

// stopPolling cancels the poll loop and waits for it, so no poll result
// lands after it returns.
func (s *Synchronizer[T, U]) stopPolling() {
	s.mu.Lock()
	cancel, done := s.pollCancel, s.pollDone
	s.pollCancel = nil
	s.pollDone = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Synchronizer[T, U]) pollLoop(ctx context.Context, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	s.poll(ctx)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll fetches the resource once. A tick that arrives while a request is
// still outstanding is skipped.
func (s *Synchronizer[T, U]) poll(ctx context.Context) {
	if !s.pollBusy.CompareAndSwap(false, true) {
		return
	}
	defer s.pollBusy.Store(false)

	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	updates, err := s.feed.Poll(reqCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if s.opts.Observer != nil {
		s.opts.Observer.ObservePoll(string(s.feed.Topic), err)
	}
	if err != nil {
		s.pollFailed(err)
		return
	}

	s.mu.Lock()
	recovered := s.failures >= s.opts.FailureThreshold
	s.failures = 0
	s.mu.Unlock()
	if recovered {
		s.logger.Info("polling recovered")
	}
	s.apply(updates)
}

func (s *Synchronizer[T, U]) pollFailed(err error) {
	s.mu.Lock()
	s.failures++
	failures := s.failures
	onError := s.onError
	s.mu.Unlock()

	if failures%s.opts.FailureThreshold != 0 {
		s.logger.Debug("poll failed; will retry", logging.Error(err), logging.Failures(failures))
		return
	}
	logging.WarnWithContext(s.logger, "status polling keeps failing", "poll_failed",
		logging.Error(err),
		logging.Failures(failures),
		logging.String("class", string(services.Classify(err))),
	)
	if onError != nil {
		onError(err)
	}
}
