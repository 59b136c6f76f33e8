package monitoring

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionMonitor(t *testing.T) {
	monitor := NewSessionMonitor()

	assert.NotNil(t, monitor)
	assert.NotZero(t, monitor.metrics.StartTime)
	assert.Zero(t, monitor.Snapshot().Renders)
}

func TestSessionMonitor_RecordRender(t *testing.T) {
	t.Run("first render sets the average", func(t *testing.T) {
		monitor := NewSessionMonitor()
		monitor.RecordRender(10*time.Millisecond, false)

		metrics := monitor.Snapshot()
		assert.Equal(t, int64(1), metrics.Renders)
		assert.Equal(t, 10*time.Millisecond, metrics.AverageRenderTime)
		assert.Equal(t, 10*time.Millisecond, metrics.SlowestRender)
		assert.NotZero(t, metrics.LastRender)
	})

	t.Run("moving average", func(t *testing.T) {
		monitor := NewSessionMonitor()
		monitor.RecordRender(100*time.Millisecond, false)
		monitor.RecordRender(200*time.Millisecond, true)

		metrics := monitor.Snapshot()
		assert.InDelta(t, float64(110*time.Millisecond), float64(metrics.AverageRenderTime), float64(time.Microsecond))
		assert.Equal(t, 200*time.Millisecond, metrics.SlowestRender)
	})

	t.Run("layout cache hit rate", func(t *testing.T) {
		monitor := NewSessionMonitor()
		assert.Zero(t, monitor.Snapshot().LayoutCacheHitRate())

		monitor.RecordRender(time.Millisecond, false)
		monitor.RecordRender(time.Millisecond, true)
		monitor.RecordRender(time.Millisecond, true)
		monitor.RecordRender(time.Millisecond, true)

		metrics := monitor.Snapshot()
		assert.Equal(t, int64(3), metrics.LayoutCacheHits)
		assert.InDelta(t, 75.0, metrics.LayoutCacheHitRate(), 0.001)
	})
}

func TestSessionMonitor_RecordReload(t *testing.T) {
	monitor := NewSessionMonitor()

	monitor.RecordReload(5*time.Millisecond, nil)
	monitor.RecordReload(7*time.Millisecond, errors.New("bad front matter"))
	monitor.RecordImageFallback()

	metrics := monitor.Snapshot()
	assert.Equal(t, int64(2), metrics.Reloads)
	assert.Equal(t, int64(1), metrics.FailedReloads)
	assert.Equal(t, 7*time.Millisecond, metrics.LastReloadTime)
	assert.Equal(t, int64(1), metrics.ImageFallbacks)
}

func TestSessionMonitor_Snapshot(t *testing.T) {
	monitor := NewSessionMonitor()
	metrics := monitor.Snapshot()

	assert.Greater(t, metrics.GoroutineCount, 0)
	assert.Greater(t, metrics.HeapSize, int64(0))
}

func TestSessionMonitor_Uptime(t *testing.T) {
	monitor := NewSessionMonitor()
	start := monitor.metrics.StartTime
	monitor.now = func() time.Time { return start.Add(90 * time.Second) }

	assert.Equal(t, 90*time.Second, monitor.Uptime())
}

func TestSessionMonitor_LogSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	monitor := NewSessionMonitor()
	monitor.RecordRender(time.Millisecond, false)
	monitor.RecordReload(time.Millisecond, nil)
	monitor.LogSummary(logger)

	output := buf.String()
	assert.Contains(t, output, "presentation session ended")
	assert.Contains(t, output, "renders=1")
	assert.Contains(t, output, "reloads=1")

	assert.NotPanics(t, func() { monitor.LogSummary(nil) })
}

func TestSessionMonitor_Concurrent(t *testing.T) {
	monitor := NewSessionMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			monitor.RecordRender(time.Millisecond, true)
		}()
		go func() {
			defer wg.Done()
			monitor.RecordReload(time.Millisecond, nil)
		}()
		go func() {
			defer wg.Done()
			_ = monitor.Snapshot()
		}()
	}
	wg.Wait()

	metrics := monitor.Snapshot()
	assert.Equal(t, int64(10), metrics.Renders)
	assert.Equal(t, int64(10), metrics.Reloads)
}

func TestSafeUint64ToInt64(t *testing.T) {
	assert.Equal(t, int64(42), safeUint64ToInt64(42))
	assert.Equal(t, int64(9223372036854775807), safeUint64ToInt64(1<<63))
}
