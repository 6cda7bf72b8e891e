package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"kotekapu/client/internal/telemetry"
)

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &telemetry.Event{EventType: "login"}); err != nil {
		t.Errorf("noop Emit(ctx, event): %v", err)
	}
}

func TestEmit_NilEvent_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func recordAttrs(rec otellog.Record) map[string]string {
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	return attrs
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	capture := &recordCapture{}
	em := NewEventEmitterWithLogger(capture)
	event := &telemetry.Event{
		UserID:    42,
		DeviceID:  "dev1",
		EventType: "login",
		Payload:   []byte(`{"key":"value"}`),
	}

	before := time.Now().UTC()
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	after := time.Now().UTC()
	rec := capture.rec

	if rec.Body().Empty() {
		t.Error("body should be set when payload is non-empty")
	}
	if got := rec.Body().AsBytes(); string(got) != `{"key":"value"}` {
		t.Errorf("body = %q, want %q", got, event.Payload)
	}

	attrs := recordAttrs(rec)
	want := map[string]string{"user_id": "42", "device_id": "dev1", "event_type": "login"}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k], v)
		}
	}

	ts := rec.Timestamp()
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp = %v, should be between %v and %v", ts, before, after)
	}
}

func TestEmit_PartialFieldsOmitted(t *testing.T) {
	capture := &recordCapture{}
	em := NewEventEmitterWithLogger(capture)
	event := &telemetry.Event{EventType: "feed_refresh"}

	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := capture.rec

	if !rec.Body().Empty() {
		t.Error("body should be empty when payload is nil")
	}
	attrs := recordAttrs(rec)
	if attrs["event_type"] != "feed_refresh" {
		t.Errorf("event_type = %q, want %q", attrs["event_type"], "feed_refresh")
	}
	if attrs["user_id"] != "" {
		t.Errorf("user_id should not be set for an anonymous event, got %q", attrs["user_id"])
	}
	if attrs["device_id"] != "" {
		t.Errorf("device_id should not be set when empty, got %q", attrs["device_id"])
	}
}

func TestEmitAsync_NilArgumentsDoNotPanic(t *testing.T) {
	EmitAsync(nil, &telemetry.Event{EventType: "x"})
	EmitAsync(NewEventEmitter(nil), nil)
}
