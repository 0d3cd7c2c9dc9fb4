package sse_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio-server/internal/sse"
)

func newTestManager(t *testing.T) (*sse.Manager, context.CancelFunc) {
	t.Helper()
	m := sse.NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func receiveEvent(t *testing.T, c *sse.Client) sse.Event {
	t.Helper()
	select {
	case ev := <-c.EventChan:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return sse.Event{}
	}
}

func TestManagerDeliversToUser(t *testing.T) {
	m, _ := newTestManager(t)

	client, err := m.Connect("user-1")
	require.NoError(t, err)
	defer m.Disconnect(client.ID)

	m.Emit(sse.NewNotificationEvent("user-1", "Sleep timer", "Playback paused"))

	ev := receiveEvent(t, client)
	assert.Equal(t, sse.EventPlayerNotification, ev.Type)
	data, ok := ev.Data.(sse.NotificationEventData)
	require.True(t, ok)
	assert.Equal(t, "Sleep timer", data.Title)
}

func TestManagerFiltersOtherUsers(t *testing.T) {
	m, _ := newTestManager(t)

	mine, err := m.Connect("user-1")
	require.NoError(t, err)
	defer m.Disconnect(mine.ID)
	theirs, err := m.Connect("user-2")
	require.NoError(t, err)
	defer m.Disconnect(theirs.ID)

	m.Emit(sse.NewFolderUpdatedEvent("user-1", "folder_1"))

	ev := receiveEvent(t, mine)
	assert.Equal(t, sse.EventFolderUpdated, ev.Type)

	select {
	case ev := <-theirs.EventChan:
		t.Fatalf("unexpected event for other user: %v", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManagerBroadcastWithoutUser(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.Connect("user-1")
	require.NoError(t, err)
	defer m.Disconnect(a.ID)
	b, err := m.Connect("user-2")
	require.NoError(t, err)
	defer m.Disconnect(b.ID)

	m.Emit(sse.Event{Type: sse.EventHeartbeat, Timestamp: time.Now()})

	assert.Equal(t, sse.EventHeartbeat, receiveEvent(t, a).Type)
	assert.Equal(t, sse.EventHeartbeat, receiveEvent(t, b).Type)
}

func TestManagerDisconnectStopsDelivery(t *testing.T) {
	m, _ := newTestManager(t)

	client, err := m.Connect("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Disconnecting twice is safe.
	m.Disconnect(client.ID)
}

func TestManagerShutdownDrains(t *testing.T) {
	m := sse.NewManager(slog.New(slog.DiscardHandler))
	// No Start loop: Shutdown itself drains the queue.

	client, err := m.Connect("user-1")
	require.NoError(t, err)

	m.Emit(sse.NewFolderUpdatedEvent("user-1", "folder_1"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	ev := receiveEvent(t, client)
	assert.Equal(t, sse.EventFolderUpdated, ev.Type)

	// Emits after shutdown are dropped silently.
	m.Emit(sse.NewFolderUpdatedEvent("user-1", "folder_2"))
}
