// Package metrics forwards platform counters, gauges and timers to a
// statistics-collection agent. Emission is best effort: a nil, disabled or
// closed emitter silently drops every value, and transport failures are
// logged and swallowed so that telemetry can never destabilize a caller.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "openelt"

var timerBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// ClientConfig describes the statistics-collection agent endpoint and
// whether publishing is enabled at all. Immutable once passed to New.
type ClientConfig struct {
	Host           string
	Port           string
	PublishEnabled bool
}

// Emitter records metrics from the closed registry and pushes them to the
// configured agent. The zero value and a nil *Emitter are valid and drop
// everything. All methods are safe for concurrent use.
type Emitter struct {
	app    App
	cfg    ClientConfig
	closed atomic.Bool

	reg      *prometheus.Registry
	pusher   *push.Pusher
	counters map[Name]prometheus.Counter
	gauges   map[Name]prometheus.Gauge
	timers   map[Name]prometheus.Histogram

	stop chan struct{}
	done chan struct{}
}

// New constructs an emitter for the given application identity. It never
// fails: when publishing is disabled the emitter is a no-op shell with no
// collectors and no agent connection.
func New(app App, cfg ClientConfig) *Emitter {
	e := &Emitter{app: app, cfg: cfg}
	if !cfg.PublishEnabled {
		return e
	}

	e.reg = prometheus.NewRegistry()
	e.counters = make(map[Name]prometheus.Counter, len(registry))
	e.gauges = make(map[Name]prometheus.Gauge, len(registry))
	e.timers = make(map[Name]prometheus.Histogram, len(registry))
	for name, ent := range registry {
		switch ent.kind {
		case KindCounter:
			c := prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      string(name),
				Help:      ent.help,
			})
			e.reg.MustRegister(c)
			e.counters[name] = c
		case KindGauge:
			g := prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      string(name),
				Help:      ent.help,
			})
			e.reg.MustRegister(g)
			e.gauges[name] = g
		case KindTimer:
			h := prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      string(name),
				Help:      ent.help,
				Buckets:   timerBuckets,
			})
			e.reg.MustRegister(h)
			e.timers[name] = h
		}
	}

	e.pusher = push.New("http://"+cfg.Host+":"+cfg.Port, "open-elt").
		Gatherer(e.reg).
		Grouping("app", string(app))
	return e
}

// StartPushLoop pushes the registry to the agent at the given interval
// until ctx is done or Close is called. It is a no-op on a disabled
// emitter. Safe to skip entirely; Push can be driven manually instead.
func (e *Emitter) StartPushLoop(ctx context.Context, interval time.Duration) {
	if !e.active() || interval <= 0 {
		return
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go func() {
		defer close(e.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.Push(ctx)
			case <-ctx.Done():
				return
			case <-e.stop:
				return
			}
		}
	}()
}

// Gauge records a point-in-time value for a registered gauge.
func (e *Emitter) Gauge(name Name, v float64) {
	if !e.active() {
		return
	}
	if g, ok := e.gauges[name]; ok {
		g.Set(v)
	}
}

// Count adds delta to a registered counter. Negative deltas are dropped.
func (e *Emitter) Count(name Name, delta float64) {
	if !e.active() || delta < 0 {
		return
	}
	if c, ok := e.counters[name]; ok {
		c.Add(delta)
	}
}

// Timing records an elapsed duration, in milliseconds, for a registered timer.
func (e *Emitter) Timing(name Name, d time.Duration) {
	if !e.active() {
		return
	}
	if h, ok := e.timers[name]; ok {
		h.Observe(float64(d) / float64(time.Millisecond))
	}
}

// Push forwards the current registry to the agent. Failures are logged at
// warn level and otherwise ignored.
func (e *Emitter) Push(ctx context.Context) {
	if !e.active() {
		return
	}
	if err := e.pusher.PushContext(ctx); err != nil {
		slog.Warn("metrics push failed",
			"agent", e.cfg.Host+":"+e.cfg.Port,
			"app", string(e.app),
			"error", err)
	}
}

// Close stops the push loop, performs a final best-effort push, and
// permanently disables the emitter. Subsequent emissions are dropped.
// Safe to call more than once and on a nil receiver.
func (e *Emitter) Close() {
	if e == nil || e.closed.Swap(true) {
		return
	}
	if e.stop != nil {
		close(e.stop)
		<-e.done
	}
	if e.reg != nil && e.cfg.PublishEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.pusher.PushContext(ctx); err != nil {
			slog.Warn("final metrics push failed", "error", err)
		}
	}
}

// Registry exposes the emitter's collector registry for the /metrics
// listener. Nil when publishing is disabled.
func (e *Emitter) Registry() *prometheus.Registry {
	if e == nil {
		return nil
	}
	return e.reg
}

func (e *Emitter) active() bool {
	return e != nil && e.reg != nil && e.cfg.PublishEnabled && !e.closed.Load()
}

// AgentAddr is the host:port of the configured agent, for logging.
func (e *Emitter) AgentAddr() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s", e.cfg.Host, e.cfg.Port)
}
