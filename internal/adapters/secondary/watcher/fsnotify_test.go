package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

func newNotifyWatcher(t *testing.T, debounce time.Duration) *FSNotifyWatcher {
	t.Helper()
	watcher, err := NewFSNotifyWatcher(debounce, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	t.Cleanup(func() { _ = watcher.Stop() })
	return watcher
}

func TestFSNotifyWatcher(t *testing.T) {
	t.Run("reports writes", func(t *testing.T) {
		watcher := newNotifyWatcher(t, 20*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := watcher.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		updateFile(t, tmpFile, "updated")

		event := receive(t, events, 2*time.Second)
		assert.Equal(t, tmpFile, event.Path)
		assert.Equal(t, ports.Modified, event.Type)
	})

	t.Run("ignores other files in the directory", func(t *testing.T) {
		watcher := newNotifyWatcher(t, 20*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := watcher.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(tmpFile), "other.md"), []byte("x"), 0o644))

		select {
		case event := <-events:
			t.Fatalf("unexpected event for %s", event.Path)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("replacing the file is reported", func(t *testing.T) {
		watcher := newNotifyWatcher(t, 50*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := watcher.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		replacement := filepath.Join(filepath.Dir(tmpFile), ".slides.md.swp")
		require.NoError(t, os.WriteFile(replacement, []byte("replaced"), 0o644))
		require.NoError(t, os.Rename(replacement, tmpFile))

		event := receive(t, events, 2*time.Second)
		assert.Equal(t, tmpFile, event.Path)
		assert.NotEqual(t, ports.Deleted, event.Type)
	})

	t.Run("bursts are coalesced", func(t *testing.T) {
		watcher := newNotifyWatcher(t, 100*time.Millisecond)
		tmpFile := createTempFile(t, "initial")

		events, err := watcher.Watch(context.Background(), tmpFile)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			updateFile(t, tmpFile, "change")
			time.Sleep(10 * time.Millisecond)
		}

		receive(t, events, 2*time.Second)
		select {
		case <-events:
			t.Fatal("got unexpected second event")
		case <-time.After(250 * time.Millisecond):
		}
	})

	t.Run("missing file", func(t *testing.T) {
		watcher := newNotifyWatcher(t, 0)
		_, err := watcher.Watch(context.Background(), "/nonexistent/path/file.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial scan")
	})

	t.Run("stop closes the channel", func(t *testing.T) {
		watcher, err := NewFSNotifyWatcher(0, nil)
		if err != nil {
			t.Skipf("fsnotify unavailable: %v", err)
		}
		events, err := watcher.Watch(context.Background(), createTempFile(t, "x"))
		require.NoError(t, err)

		require.NoError(t, watcher.Stop())
		_, ok := <-events
		assert.False(t, ok)
		assert.NoError(t, watcher.Stop())
	})
}

func TestChangeTypeOf(t *testing.T) {
	tests := []struct {
		op       fsnotify.Op
		want     ports.ChangeType
		relevant bool
	}{
		{fsnotify.Create, ports.Created, true},
		{fsnotify.Write, ports.Modified, true},
		{fsnotify.Create | fsnotify.Write, ports.Created, true},
		{fsnotify.Remove, ports.Deleted, true},
		{fsnotify.Rename, ports.Deleted, true},
		{fsnotify.Chmod, ports.Modified, false},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, relevant := changeTypeOf(tt.op)
			assert.Equal(t, tt.relevant, relevant)
			if relevant {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
