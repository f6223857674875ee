package telemetry

import (
	"testing"
	"time"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/models"
	"garage_gateway/internal/mqtt"
	"garage_gateway/internal/state"
)

func newTestConsumer() (*Consumer, *state.Store, *eventlog.Log) {
	store := state.NewStore()
	events := eventlog.NewLog()
	return NewConsumer(store, events, nil), store, events
}

func TestConsumer_AcceptedDoorUpdateMutatesStoreAndLogs(t *testing.T) {
	c, store, events := newTestConsumer()

	if err := c.HandleMessage(mqtt.TopicDoor, []byte(`{"value": 1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Door != 1 || snap.DoorTS.IsZero() {
		t.Fatalf("store not updated: %+v", snap)
	}
	recent := events.Recent(1)
	if len(recent) != 1 || recent[0].Kind != models.EventDoorUpdate {
		t.Fatalf("expected one door_update event, got %+v", recent)
	}
	if recent[0].Data["raw"] != `{"value": 1}` {
		t.Fatalf("event missing raw payload: %+v", recent[0].Data)
	}
}

func TestConsumer_RejectedPayloadIsSilentlyDropped(t *testing.T) {
	c, store, events := newTestConsumer()

	if err := c.HandleMessage(mqtt.TopicDoor, []byte(`{"value": 2}`)); err != nil {
		t.Fatalf("drop must not surface an error, got %v", err)
	}
	if snap := store.Snapshot(); snap.Door != 0 || !snap.DoorTS.IsZero() {
		t.Fatalf("rejected payload mutated store: %+v", snap)
	}
	if events.Len() != 0 {
		t.Fatalf("rejected payload appended an event")
	}
}

func TestConsumer_UnknownTopicIgnored(t *testing.T) {
	c, store, events := newTestConsumer()

	if err := c.HandleMessage("home/garage/unknown", []byte("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Snapshot().DoorTS.IsZero() || events.Len() != 0 {
		t.Fatalf("unknown topic caused a mutation")
	}
}

func TestConsumer_ObstacleEventCarriesParsedValues(t *testing.T) {
	c, store, events := newTestConsumer()

	if err := c.HandleMessage(mqtt.TopicObstacle, []byte("8")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := store.Snapshot()
	if snap.ObstacleCM == nil || *snap.ObstacleCM != 8 || !snap.ObstacleBlocked {
		t.Fatalf("unexpected obstacle state: %+v", snap)
	}
	evt := events.Recent(1)[0]
	if evt.Kind != models.EventObstacleUpdate {
		t.Fatalf("expected obstacle_update, got %q", evt.Kind)
	}
	if evt.Data["distance_cm"] != 8.0 || evt.Data["blocked"] != true {
		t.Fatalf("event data wrong: %+v", evt.Data)
	}
}

func TestConsumer_ArrivalOrderTimestampsNonDecreasing(t *testing.T) {
	c, store, _ := newTestConsumer()

	// Frozen clock going backwards simulates a stale arrival; the store
	// must keep the fresher reading.
	t0 := time.Now().UTC()
	c.now = func() time.Time { return t0 }
	if err := c.HandleMessage(mqtt.TopicGPS, []byte("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.now = func() time.Time { return t0.Add(-time.Second) }
	if err := c.HandleMessage(mqtt.TopicGPS, []byte("0")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := store.Snapshot()
	if !snap.GPSInside || !snap.GPSTS.Equal(t0) {
		t.Fatalf("stale message overwrote fresher reading: %+v", snap)
	}
}
