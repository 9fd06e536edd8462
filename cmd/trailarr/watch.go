package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"trailarr/internal/backend"
	"trailarr/internal/cache"
	"trailarr/internal/livesync"
	"trailarr/internal/logging"
	"trailarr/internal/metrics"
)

type watchOptions struct {
	duration    time.Duration
	metricsBind string
}

func addWatchFlags(cmd *cobra.Command, opts *watchOptions) {
	cmd.Flags().DurationVar(&opts.duration, "for", 0, "Stop watching after this long (0 watches until interrupted)")
	cmd.Flags().StringVar(&opts.metricsBind, "metrics-bind", "", "Serve Prometheus metrics on this address (overrides metrics.bind)")
}

// watchSession is the shared state of one watch command: the backend client,
// synchronizer options, and whatever must be torn down on exit.
type watchSession struct {
	client   *backend.Client
	store    *cache.Store
	syncOpts livesync.Options
	output   *syncOutput
	teardown []func()
}

func (w *watchSession) close() {
	for i := len(w.teardown) - 1; i >= 0; i-- {
		w.teardown[i]()
	}
	w.teardown = nil
}

// syncOutput serializes writes from synchronizer callbacks.
type syncOutput struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	colorize bool
}

func (o *syncOutput) status(label string, kind statusKind, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.errOut, renderStatusLine(label, kind, message, o.colorize))
}

// stateReporter prints synchronizer state transitions and forwards every
// event to the metrics observer when one is configured.
type stateReporter struct {
	inner  livesync.Observer
	output *syncOutput
}

func (r stateReporter) ObservePush(topic string) {
	if r.inner != nil {
		r.inner.ObservePush(topic)
	}
}

func (r stateReporter) ObserveDropped(topic string) {
	if r.inner != nil {
		r.inner.ObserveDropped(topic)
	}
}

func (r stateReporter) ObservePoll(topic string, err error) {
	if r.inner != nil {
		r.inner.ObservePoll(topic, err)
	}
}

func (r stateReporter) ObserveDial(topic string, err error) {
	if r.inner != nil {
		r.inner.ObserveDial(topic, err)
	}
}

func (r stateReporter) ObserveState(topic string, state livesync.State) {
	if r.inner != nil {
		r.inner.ObserveState(topic, state)
	}
	var message string
	switch state {
	case livesync.StateLive:
		message = "live updates connected"
	case livesync.StatePolling:
		message = "live channel unavailable; polling"
	default:
		return
	}
	r.output.status("Sync", syncStateKind(state), fmt.Sprintf("%s (%s)", message, topic))
}

// startWatch prepares a watch session: optional metrics server, backend
// client, and a shared cache session so `cache clear` cannot drop snapshots
// a running watch keeps writing.
func (c *commandContext) startWatch(cmd *cobra.Command, opts watchOptions) (*watchSession, error) {
	cfg := c.configValue()
	errOut := cmd.ErrOrStderr()
	ws := &watchSession{
		syncOpts: livesync.OptionsFromConfig(cfg),
		output: &syncOutput{
			out:      cmd.OutOrStdout(),
			errOut:   errOut,
			colorize: shouldColorize(errOut),
		},
	}
	ws.syncOpts.Logger = c.log()

	bind := strings.TrimSpace(opts.metricsBind)
	if bind == "" {
		bind = cfg.Metrics.Bind
	}
	var observer *metrics.Metrics
	if bind != "" {
		reg := prometheus.NewRegistry()
		observer = metrics.New(reg)
		server := metrics.NewServer(bind, reg, c.log())
		addr, err := server.Listen()
		if err != nil {
			return nil, fmt.Errorf("metrics listener on %s: %w", bind, err)
		}
		go func() { _ = server.Start() }()
		ws.teardown = append(ws.teardown, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		})
		ws.output.status("Metrics", statusInfo, fmt.Sprintf("serving http://%s/metrics", addr))
	}

	reporter := stateReporter{output: ws.output}
	var requests backend.RequestObserver
	if observer != nil {
		reporter.inner = observer
		requests = observer
	}
	client, err := c.backendClient(requests)
	if err != nil {
		ws.close()
		return nil, err
	}
	ws.client = client
	ws.syncOpts.Observer = reporter

	store, err := cache.Open(cfg)
	switch {
	case err == nil:
		release, err := store.Session()
		if err != nil {
			_ = store.Close()
			c.log().Debug("cache session unavailable; snapshots will not be updated", logging.Error(err))
			break
		}
		ws.store = store
		ws.teardown = append(ws.teardown, func() {
			_ = release()
			_ = store.Close()
		})
	case errors.Is(err, cache.ErrDisabled):
	default:
		c.log().Debug("cache unavailable; snapshots will not be updated", logging.Error(err))
	}
	return ws, nil
}

// watchView describes how a watch command presents its collection.
type watchView[T any] struct {
	title string
	// resource is the cache snapshot refreshed on every change.
	resource string
	render   func([]T) string
}

// runWatch keeps syncer running until the context ends or --for elapses,
// printing the collection initially and on every change.
func runWatch[T, U any](cmd *cobra.Command, ctx *commandContext, ws *watchSession, opts watchOptions, feed livesync.Feed[T, U], initial []T, view watchView[T]) error {
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if opts.duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, opts.duration)
		defer cancel()
	}

	out := ws.output
	emit := func(items []T) {
		out.mu.Lock()
		defer out.mu.Unlock()
		if ctx.jsonOutput() {
			if items == nil {
				items = []T{}
			}
			_ = writeJSONLine(out.out, items)
			return
		}
		title := fmt.Sprintf("%s @ %s", view.title, time.Now().Format("15:04:05"))
		for _, line := range renderSectionHeader(title, shouldColorize(out.out)) {
			fmt.Fprintln(out.out, line)
		}
		fmt.Fprintln(out.out, view.render(items))
	}
	persist := func(items []T) {
		if ws.store == nil || view.resource == "" {
			return
		}
		if err := ws.store.Put(context.Background(), view.resource, items); err != nil {
			ctx.log().Debug("snapshot update failed", logging.Resource(view.resource), logging.Error(err))
		}
	}

	syncer := livesync.New(feed, initial, ws.syncOpts)
	syncer.OnChange(func(items []T) {
		emit(items)
		persist(items)
	})
	syncer.OnError(func(err error) {
		out.status("Sync", statusError, err.Error())
	})

	emit(syncer.Snapshot())
	persist(syncer.Snapshot())
	if err := syncer.Start(runCtx); err != nil {
		return err
	}
	<-runCtx.Done()
	return syncer.Close()
}
