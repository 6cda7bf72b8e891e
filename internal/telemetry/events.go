// Package telemetry defines client usage events and the emitter interface.
package telemetry

import "context"

// Event is one client-side usage event, e.g. a login or a feed refresh.
type Event struct {
	UserID    int
	DeviceID  string
	EventType string
	Payload   []byte
}

// EventEmitter delivers events to a telemetry backend. Best-effort; the
// client never fails an operation because an event could not be sent.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
