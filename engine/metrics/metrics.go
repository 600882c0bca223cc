// Package metrics exports frame pipeline and simulation telemetry to
// Prometheus.
package metrics

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spaghettifunk/midnight/engine/core"
)

const namespace = "midnight"

// Collector records frame pipeline events. It satisfies renderer.Observer.
type Collector struct {
	registry *prometheus.Registry

	// Frame metrics
	framesRendered  prometheus.Counter
	frameDuration   prometheus.Histogram
	framesPerSecond prometheus.Gauge
	frameTimeAvg    prometheus.Gauge
	acquireFailures prometheus.Counter

	// Frame slot metrics
	slotReclaims  *prometheus.CounterVec
	slotFenceWait prometheus.Histogram

	// Simulation metrics
	simTicks prometheus.Counter

	mu    sync.Mutex
	stats *core.FrameStats
}

// NewCollector creates a collector on its own registry. Every series carries
// the run label.
func NewCollector(runID string) *Collector {
	labels := prometheus.Labels{"run": runID}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stats:    core.NewFrameStats(),
	}

	c.framesRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "frame",
		Name:        "rendered_total",
		Help:        "Total number of frames recorded, submitted and presented",
		ConstLabels: labels,
	})
	c.frameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   "frame",
		Name:        "duration_seconds",
		Help:        "Time spent in one render frame, including the slot reclaim",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~256ms
	})
	c.framesPerSecond = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "frame",
		Name:        "per_second",
		Help:        "Frames presented during the last full second",
		ConstLabels: labels,
	})
	c.frameTimeAvg = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "frame",
		Name:        "time_average_milliseconds",
		Help:        "Rolling average frame time",
		ConstLabels: labels,
	})
	c.acquireFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "surface",
		Name:        "acquire_failures_total",
		Help:        "Total number of failed surface texture acquisitions",
		ConstLabels: labels,
	})

	c.slotReclaims = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "slot",
		Name:        "reclaims_total",
		Help:        "Total number of frame slot reclaims",
		ConstLabels: labels,
	}, []string{"slot"})
	c.slotFenceWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   "slot",
		Name:        "fence_wait_seconds",
		Help:        "Time spent waiting on a frame slot fence before reuse",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.00005, 4, 8), // 50us to ~800ms
	})

	c.simTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "sim",
		Name:        "ticks_total",
		Help:        "Total number of simulation ticks",
		ConstLabels: labels,
	})

	c.registry.MustRegister(
		c.framesRendered,
		c.frameDuration,
		c.framesPerSecond,
		c.frameTimeAvg,
		c.acquireFailures,
		c.slotReclaims,
		c.slotFenceWait,
		c.simTicks,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) FrameRendered(slot int, elapsed time.Duration) {
	c.framesRendered.Inc()
	c.frameDuration.Observe(elapsed.Seconds())

	c.mu.Lock()
	c.stats.Update(elapsed)
	fps, frameTime := c.stats.FPS(), c.stats.FrameTime()
	c.mu.Unlock()

	c.framesPerSecond.Set(fps)
	c.frameTimeAvg.Set(frameTime)
}

func (c *Collector) SlotReclaimed(slot int, waited time.Duration) {
	c.slotReclaims.WithLabelValues(slotLabel(slot)).Inc()
	c.slotFenceWait.Observe(waited.Seconds())
}

func (c *Collector) AcquireFailed() {
	c.acquireFailures.Inc()
}

func (c *Collector) SimTick() {
	c.simTicks.Inc()
}

// FPS and FrameTime report the same values as the exported gauges.
func (c *Collector) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.FPS()
}

func (c *Collector) FrameTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.FrameTime()
}

func slotLabel(slot int) string {
	switch slot {
	case 0:
		return "0"
	case 1:
		return "1"
	case 2:
		return "2"
	default:
		return "other"
	}
}

// Server exposes a collector registry over HTTP at /metrics.
type Server struct {
	listener net.Listener
	server   *http.Server
	done     chan struct{}
}

// Serve binds address and serves the registry in the background.
func (c *Collector) Serve(address string) (*Server, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	s := &Server{
		listener: ln,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.LogError("metrics server stopped: %s", err)
		}
	}()
	core.LogInfo("Serving metrics on http://%s/metrics", ln.Addr())
	return s, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Close() error {
	err := s.server.Close()
	<-s.done
	return err
}
