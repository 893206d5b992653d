package events

// FileEventPayload is the payload for file_changed and file_deleted events.
type FileEventPayload struct {
	Path string `json:"path"`
}

// HeartbeatPayload is the payload for heartbeat events.
type HeartbeatPayload struct {
	Sequence int64 `json:"sequence"`
	Uptime   int64 `json:"uptime_seconds"`
}

// NewFileChangedEvent creates a new file_changed event.
func NewFileChangedEvent(path string) *BaseEvent {
	return NewEvent(EventTypeFileChanged, FileEventPayload{Path: path})
}

// NewFileDeletedEvent creates a new file_deleted event.
func NewFileDeletedEvent(path string) *BaseEvent {
	return NewEvent(EventTypeFileDeleted, FileEventPayload{Path: path})
}

// NewHeartbeatEvent creates a new heartbeat event.
func NewHeartbeatEvent(sequence, uptimeSeconds int64) *BaseEvent {
	return NewEvent(EventTypeHeartbeat, HeartbeatPayload{
		Sequence: sequence,
		Uptime:   uptimeSeconds,
	})
}
