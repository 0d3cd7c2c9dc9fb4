// Package sse implements Server-Sent Events for streaming player state and
// vocabulary changes to connected clients.
package sse

import (
	"time"

	"github.com/lectio/lectio-server/internal/engine"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventPlayerState carries a full engine snapshot. Sent after every
	// engine command that changed observable state, and once on connect.
	EventPlayerState EventType = "player.state"

	// EventPlayerNotification carries a user-facing message, such as the
	// sleep timer expiry.
	EventPlayerNotification EventType = "player.notification"

	// EventFolderUpdated signals that a vocabulary folder or its items
	// changed and clients should refetch.
	EventFolderUpdated EventType = "vocab.folder_updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID filters delivery to one user's clients. Empty means broadcast
	// to all. Never serialized to the client.
	UserID string `json:"-"`
}

// PlayerStateEventData is the data payload for player state events.
type PlayerStateEventData struct {
	State engine.Snapshot `json:"state"`
}

// NotificationEventData is the data payload for player notifications.
type NotificationEventData struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// FolderUpdatedEventData is the data payload for vocabulary change events.
type FolderUpdatedEventData struct {
	FolderID string `json:"folder_id"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPlayerStateEvent creates a player state event for one user.
func NewPlayerStateEvent(userID string, snap engine.Snapshot) Event {
	return Event{
		Type:      EventPlayerState,
		Timestamp: time.Now(),
		UserID:    userID,
		Data:      PlayerStateEventData{State: snap},
	}
}

// NewNotificationEvent creates a player notification event for one user.
func NewNotificationEvent(userID, title, message string) Event {
	return Event{
		Type:      EventPlayerNotification,
		Timestamp: time.Now(),
		UserID:    userID,
		Data:      NotificationEventData{Title: title, Message: message},
	}
}

// NewFolderUpdatedEvent creates a vocabulary change event for one user.
func NewFolderUpdatedEvent(userID, folderID string) Event {
	return Event{
		Type:      EventFolderUpdated,
		Timestamp: time.Now(),
		UserID:    userID,
		Data:      FolderUpdatedEventData{FolderID: folderID},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data:      HeartbeatEventData{ServerTime: time.Now()},
	}
}
