package monitoring

import (
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// averageWeight is the smoothing factor of the render time moving average
const averageWeight = 0.1

// SessionMetrics holds measurements of one presentation session
type SessionMetrics struct {
	StartTime  time.Time
	LastRender time.Time

	// Render counters
	Renders           int64
	LayoutCacheHits   int64
	AverageRenderTime time.Duration
	SlowestRender     time.Duration

	// Reload counters
	Reloads        int64
	FailedReloads  int64
	LastReloadTime time.Duration
	ImageFallbacks int64

	// Memory at snapshot time
	HeapSize       int64
	GoroutineCount int
	GCCount        uint32
}

// LayoutCacheHitRate returns the share of renders that reused a layout, in percent
func (m SessionMetrics) LayoutCacheHitRate() float64 {
	if m.Renders == 0 {
		return 0
	}
	return float64(m.LayoutCacheHits) / float64(m.Renders) * 100
}

// SessionMonitor records render and reload statistics for a presentation
type SessionMonitor struct {
	mu      sync.Mutex
	metrics SessionMetrics
	now     func() time.Time
}

// NewSessionMonitor creates a new session monitor
func NewSessionMonitor() *SessionMonitor {
	return &SessionMonitor{
		metrics: SessionMetrics{StartTime: time.Now()},
		now:     time.Now,
	}
}

// RecordRender records a slide repaint
func (sm *SessionMonitor) RecordRender(duration time.Duration, cached bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.metrics.Renders++
	if cached {
		sm.metrics.LayoutCacheHits++
	}
	sm.metrics.LastRender = sm.now()
	if duration > sm.metrics.SlowestRender {
		sm.metrics.SlowestRender = duration
	}

	// Exponential moving average
	if sm.metrics.AverageRenderTime == 0 {
		sm.metrics.AverageRenderTime = duration
	} else {
		sm.metrics.AverageRenderTime = time.Duration(
			float64(sm.metrics.AverageRenderTime)*(1-averageWeight) + float64(duration)*averageWeight,
		)
	}
}

// RecordReload records a recompilation
func (sm *SessionMonitor) RecordReload(duration time.Duration, err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.metrics.Reloads++
	sm.metrics.LastReloadTime = duration
	if err != nil {
		sm.metrics.FailedReloads++
	}
}

// RecordImageFallback records an image replaced by a placeholder
func (sm *SessionMonitor) RecordImageFallback() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.metrics.ImageFallbacks++
}

// Snapshot returns a copy of the current metrics with fresh memory figures
func (sm *SessionMonitor) Snapshot() SessionMetrics {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	snapshot := sm.metrics
	snapshot.HeapSize = safeUint64ToInt64(memStats.HeapAlloc)
	snapshot.GoroutineCount = runtime.NumGoroutine()
	snapshot.GCCount = memStats.NumGC
	return snapshot
}

// Uptime returns how long the session has been running
func (sm *SessionMonitor) Uptime() time.Duration {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.now().Sub(sm.metrics.StartTime)
}

// LogSummary writes the session statistics to logger
func (sm *SessionMonitor) LogSummary(logger *slog.Logger) {
	if logger == nil {
		return
	}
	metrics := sm.Snapshot()
	logger.Info("presentation session ended",
		slog.Duration("uptime", sm.Uptime()),
		slog.Int64("renders", metrics.Renders),
		slog.Float64("layout_cache_hit_rate", metrics.LayoutCacheHitRate()),
		slog.Duration("avg_render_time", metrics.AverageRenderTime),
		slog.Duration("slowest_render", metrics.SlowestRender),
		slog.Int64("reloads", metrics.Reloads),
		slog.Int64("failed_reloads", metrics.FailedReloads),
		slog.Int64("image_fallbacks", metrics.ImageFallbacks),
		slog.Int64("heap_mb", metrics.HeapSize/(1024*1024)),
	)
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

// Ensure SessionMonitor implements SessionRecorder
var _ ports.SessionRecorder = (*SessionMonitor)(nil)
