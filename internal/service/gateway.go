package service

import (
	"encoding/json"
	"fmt"
	"time"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/models"
	"garage_gateway/internal/mqtt"
	"garage_gateway/internal/state"
)

// Publisher is the slice of the bus client the gateway needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// GatewayService validates and forwards outbound actuator commands and
// re-publishes externally ingested position updates.
type GatewayService struct {
	bus      Publisher
	store    *state.Store
	events   *eventlog.Log
	deviceID int
	now      func() time.Time
}

func NewGatewayService(bus Publisher, store *state.Store, events *eventlog.Log, deviceID int) *GatewayService {
	return &GatewayService{bus: bus, store: store, events: events, deviceID: deviceID, now: time.Now}
}

// SendCommand publishes an open/close command (1=open, 0=close) on the
// command topic. Fire-and-forget: the actuator's confirmation arrives
// later as ordinary telemetry on the door channel.
func (s *GatewayService) SendCommand(value int) error {
	if value != 0 && value != 1 {
		return fmt.Errorf("%w: command value must be 0 or 1", ErrUnprocessable)
	}

	payload, err := json.Marshal(map[string]any{"device_id": s.deviceID, "value": value})
	if err != nil {
		return err
	}
	if err := s.bus.Publish(mqtt.TopicCmd, payload, 0, false); err != nil {
		return err
	}

	s.events.Push(models.EventCmdPublish, map[string]any{"value": value})
	return nil
}

// IngestPosition accepts a geofence update from an external client,
// re-publishes it on the bus for uniformity with native telemetry, and
// applies it to the gps channel synchronously (no bus round trip).
func (s *GatewayService) IngestPosition(value any, lat, lon *float64) error {
	inside, ok := booleanLike(value)
	if !ok {
		return fmt.Errorf("%w: field 'value' must be 0/1 or boolean", ErrUnprocessable)
	}

	intVal := 0
	if inside {
		intVal = 1
	}
	msg := map[string]any{"device_id": s.deviceID, "value": intVal}
	if lat != nil {
		msg["lat"] = *lat
	}
	if lon != nil {
		msg["lon"] = *lon
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// The republish is best-effort: the synchronous state update below is
	// the authoritative effect.
	_ = s.bus.Publish(mqtt.TopicGPS, payload, 0, false)

	s.events.Push(models.EventGPSIngest, msg)
	s.store.SetGPS(inside, s.now().UTC())
	return nil
}

// booleanLike interprets 0/1 (in any numeric shape JSON decoding may
// produce) and true/false.
func booleanLike(v any) (val bool, ok bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case int:
		if x == 0 || x == 1 {
			return x == 1, true
		}
	case float64:
		if x == 0 || x == 1 {
			return x == 1, true
		}
	}
	return false, false
}
