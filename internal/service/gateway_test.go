package service

import (
	"encoding/json"
	"errors"
	"testing"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/models"
	"garage_gateway/internal/mqtt"
	"garage_gateway/internal/state"
)

type fakePublisher struct {
	publishErr error
	published  []publishedMsg
}

type publishedMsg struct {
	topic   string
	payload []byte
	qos     byte
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, _ bool) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMsg{topic: topic, payload: payload, qos: qos})
	return nil
}

func newTestGateway() (*GatewayService, *fakePublisher, *state.Store, *eventlog.Log) {
	bus := &fakePublisher{}
	store := state.NewStore()
	events := eventlog.NewLog()
	return NewGatewayService(bus, store, events, 123), bus, store, events
}

func TestGatewayService_SendCommand(t *testing.T) {
	gw, bus, _, events := newTestGateway()

	if err := gw.SendCommand(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(bus.published))
	}
	msg := bus.published[0]
	if msg.topic != mqtt.TopicCmd || msg.qos != 0 {
		t.Fatalf("unexpected publish: topic=%q qos=%d", msg.topic, msg.qos)
	}
	var body struct {
		DeviceID int `json:"device_id"`
		Value    int `json:"value"`
	}
	if err := json.Unmarshal(msg.payload, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if body.DeviceID != 123 || body.Value != 1 {
		t.Fatalf("unexpected payload: %+v", body)
	}

	evt := events.Recent(1)[0]
	if evt.Kind != models.EventCmdPublish || evt.Data["value"] != 1 {
		t.Fatalf("missing cmd_publish event: %+v", evt)
	}
}

func TestGatewayService_SendCommand_InvalidValue(t *testing.T) {
	gw, bus, _, events := newTestGateway()

	if err := gw.SendCommand(2); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable, got %v", err)
	}
	if len(bus.published) != 0 || events.Len() != 0 {
		t.Fatalf("invalid command must not publish or log")
	}
}

func TestGatewayService_SendCommand_PublishFailure(t *testing.T) {
	gw, bus, _, events := newTestGateway()
	bus.publishErr = errors.New("broker down")

	if err := gw.SendCommand(0); err == nil {
		t.Fatalf("expected error when publish fails")
	}
	if events.Len() != 0 {
		t.Fatalf("failed command must not be logged as published")
	}
}

func TestGatewayService_IngestPosition(t *testing.T) {
	gw, bus, store, events := newTestGateway()
	lat, lon := 40.795503, 8.574867

	if err := gw.IngestPosition(float64(1), &lat, &lon); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Republished on the bus with the optional coordinates.
	if len(bus.published) != 1 || bus.published[0].topic != mqtt.TopicGPS {
		t.Fatalf("expected republish on gps topic, got %+v", bus.published)
	}
	var body map[string]any
	if err := json.Unmarshal(bus.published[0].payload, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if body["value"] != 1.0 || body["lat"] != lat || body["lon"] != lon {
		t.Fatalf("unexpected payload: %+v", body)
	}

	// State mutated synchronously, without a bus round trip.
	snap := store.Snapshot()
	if !snap.GPSInside || snap.GPSTS.IsZero() {
		t.Fatalf("gps channel not updated: %+v", snap)
	}
	if evt := events.Recent(1)[0]; evt.Kind != models.EventGPSIngest {
		t.Fatalf("missing gps_ingest event: %+v", evt)
	}
}

func TestGatewayService_IngestPosition_BooleanLike(t *testing.T) {
	cases := []struct {
		name   string
		value  any
		wantOK bool
		inside bool
	}{
		{name: "float one", value: float64(1), wantOK: true, inside: true},
		{name: "float zero", value: float64(0), wantOK: true, inside: false},
		{name: "bool true", value: true, wantOK: true, inside: true},
		{name: "bool false", value: false, wantOK: true, inside: false},
		{name: "int one", value: 1, wantOK: true, inside: true},
		{name: "two", value: float64(2), wantOK: false},
		{name: "string", value: "1", wantOK: false},
		{name: "nil", value: nil, wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw, _, store, events := newTestGateway()
			err := gw.IngestPosition(tc.value, nil, nil)
			if tc.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if store.Snapshot().GPSInside != tc.inside {
					t.Fatalf("expected inside=%v", tc.inside)
				}
				return
			}
			if !errors.Is(err, ErrUnprocessable) {
				t.Fatalf("expected ErrUnprocessable, got %v", err)
			}
			if events.Len() != 0 || !store.Snapshot().GPSTS.IsZero() {
				t.Fatalf("rejected value mutated state")
			}
		})
	}
}

func TestGatewayService_IngestPosition_SurvivesPublishFailure(t *testing.T) {
	gw, bus, store, _ := newTestGateway()
	bus.publishErr = errors.New("broker down")

	// The synchronous state update is authoritative; the republish is
	// best-effort.
	if err := gw.IngestPosition(true, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Snapshot().GPSInside {
		t.Fatalf("state update skipped on publish failure")
	}
}
