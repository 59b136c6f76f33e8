package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// Mock implementations
type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

func TestLiveReloadService_Start(t *testing.T) {
	t.Run("starts watching", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		events := make(chan ports.FileChangeEvent)
		watcher.On("Watch", mock.Anything, "/slides.md").Return((<-chan ports.FileChangeEvent)(events), nil)
		watcher.On("Stop").Return(nil)

		service := NewLiveReloadService(watcher, nil)
		require.NoError(t, service.Start(context.Background(), "/slides.md"))
		assert.True(t, service.IsWatching())

		require.NoError(t, service.Stop())
		assert.False(t, service.IsWatching())
		watcher.AssertExpectations(t)
	})

	t.Run("rejects double start", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		events := make(chan ports.FileChangeEvent)
		watcher.On("Watch", mock.Anything, "/slides.md").Return((<-chan ports.FileChangeEvent)(events), nil)
		watcher.On("Stop").Return(nil)

		service := NewLiveReloadService(watcher, nil)
		require.NoError(t, service.Start(context.Background(), "/slides.md"))
		defer func() { _ = service.Stop() }()

		err := service.Start(context.Background(), "/slides.md")
		assert.EqualError(t, err, "already watching")
	})

	t.Run("propagates watcher errors", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		watcher.On("Watch", mock.Anything, "/missing.md").Return(nil, errors.New("no such file"))

		service := NewLiveReloadService(watcher, nil)
		err := service.Start(context.Background(), "/missing.md")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting watcher")
		assert.False(t, service.IsWatching())
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		service := NewLiveReloadService(&MockFileWatcher{}, nil)
		assert.NoError(t, service.Stop())
	})
}

func TestLiveReloadService_Events(t *testing.T) {
	t.Run("emits reload on modification", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		events := make(chan ports.FileChangeEvent, 1)
		watcher.On("Watch", mock.Anything, "/slides.md").Return((<-chan ports.FileChangeEvent)(events), nil)
		watcher.On("Stop").Return(nil)

		service := NewLiveReloadService(watcher, nil)
		require.NoError(t, service.Start(context.Background(), "/slides.md"))
		defer func() { _ = service.Stop() }()

		events <- ports.FileChangeEvent{Path: "/slides.md", Type: ports.Modified, Timestamp: time.Now()}

		select {
		case event := <-service.Events():
			assert.Equal(t, entities.CommandReload, event.Command)
		case <-time.After(time.Second):
			t.Fatal("expected a reload event")
		}
	})

	t.Run("coalesces bursts into one pending reload", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		events := make(chan ports.FileChangeEvent)
		watcher.On("Watch", mock.Anything, "/slides.md").Return((<-chan ports.FileChangeEvent)(events), nil)
		watcher.On("Stop").Return(nil)

		service := NewLiveReloadService(watcher, nil)
		require.NoError(t, service.Start(context.Background(), "/slides.md"))
		defer func() { _ = service.Stop() }()

		for i := 0; i < 3; i++ {
			events <- ports.FileChangeEvent{Path: "/slides.md", Type: ports.Modified, Timestamp: time.Now()}
		}

		// the unbuffered sends above guarantee all three were handled
		assert.Eventually(t, func() bool { return len(service.Events()) == 1 }, time.Second, 10*time.Millisecond)
		<-service.Events()
		assert.Len(t, service.Events(), 0)
	})

	t.Run("ignores deletions", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		events := make(chan ports.FileChangeEvent)
		watcher.On("Watch", mock.Anything, "/slides.md").Return((<-chan ports.FileChangeEvent)(events), nil)
		watcher.On("Stop").Return(nil)

		service := NewLiveReloadService(watcher, nil)
		require.NoError(t, service.Start(context.Background(), "/slides.md"))
		defer func() { _ = service.Stop() }()

		events <- ports.FileChangeEvent{Path: "/slides.md", Type: ports.Deleted, Timestamp: time.Now()}
		events <- ports.FileChangeEvent{Path: "/slides.md", Type: ports.Created, Timestamp: time.Now()}

		select {
		case event := <-service.Events():
			assert.Equal(t, entities.CommandReload, event.Command)
		case <-time.After(time.Second):
			t.Fatal("expected a reload event")
		}
		assert.Len(t, service.Events(), 0)
	})
}
