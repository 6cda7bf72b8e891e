package otel

import (
	"context"
	"log"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"kotekapu/client/internal/telemetry"
)

// recordEmitter is the part of otellog.Logger the emitter uses.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("kotekapu.telemetry")}
}

// NewEventEmitterWithLogger wires the emitter to an explicit record sink.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	if len(event.Payload) > 0 {
		rec.SetBody(otellog.BytesValue(event.Payload))
	}
	if event.UserID != 0 {
		rec.AddAttributes(otellog.String("user_id", strconv.Itoa(event.UserID)))
	}
	if event.DeviceID != "" {
		rec.AddAttributes(otellog.String("device_id", event.DeviceID))
	}
	if event.EventType != "" {
		rec.AddAttributes(otellog.String("event_type", event.EventType))
	}
	e.logger.Emit(ctx, rec)
	return nil
}

// EmitAsync runs Emit in a goroutine with a short timeout so callers are not blocked. Logs errors.
func EmitAsync(emitter telemetry.EventEmitter, event *telemetry.Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}
