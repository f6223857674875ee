package telemetry

import (
	"time"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/logger"
	"garage_gateway/internal/models"
	"garage_gateway/internal/mqtt"
	"garage_gateway/internal/state"
)

// Subscriber is the slice of the bus client the consumer needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Consumer binds the pure parser to the state store and event log. It is
// the only writer of telemetry channels: every bus message is processed to
// completion by HandleMessage, which runs on the subscribe callback.
type Consumer struct {
	store  *state.Store
	events *eventlog.Log
	log    *logger.Logger
	now    func() time.Time
}

// NewConsumer wires a consumer to the shared store and event log.
func NewConsumer(store *state.Store, events *eventlog.Log, log *logger.Logger) *Consumer {
	return &Consumer{store: store, events: events, log: log, now: time.Now}
}

// Attach subscribes the consumer to all telemetry topics.
func (c *Consumer) Attach(bus Subscriber) error {
	for _, topic := range mqtt.StateTopics() {
		if err := bus.Subscribe(topic, 0, c.HandleMessage); err != nil {
			return err
		}
	}
	return nil
}

// channelForTopic maps a bus topic to its telemetry channel.
func channelForTopic(topic string) (Channel, bool) {
	switch topic {
	case mqtt.TopicDoor:
		return ChannelDoor, true
	case mqtt.TopicGPS:
		return ChannelGPS, true
	case mqtt.TopicPIR:
		return ChannelPIR, true
	case mqtt.TopicObstacle:
		return ChannelObstacle, true
	}
	return 0, false
}

// HandleMessage decodes one inbound message and, on acceptance, applies it
// to the store and records the matching audit event. Malformed or
// out-of-range payloads are dropped without error: the sources are
// unauthenticated and best-effort.
func (c *Consumer) HandleMessage(topic string, payload []byte) error {
	ch, ok := channelForTopic(topic)
	if !ok {
		return nil
	}

	upd, ok := Parse(ch, payload)
	if !ok {
		if c.log != nil {
			c.log.Debugw("telemetry_dropped", "topic", topic, "payload", string(payload))
		}
		return nil
	}

	ts := c.now().UTC()
	switch ch {
	case ChannelDoor:
		if c.store.SetDoor(upd.Door, ts) {
			c.events.Push(models.EventDoorUpdate, map[string]any{"value": upd.Door, "raw": upd.Raw})
		}
	case ChannelGPS:
		if c.store.SetGPS(upd.Inside, ts) {
			c.events.Push(models.EventGPSUpdate, map[string]any{"inside": upd.Inside, "raw": upd.Raw})
		}
	case ChannelPIR:
		if c.store.SetPIR(upd.Motion, ts) {
			c.events.Push(models.EventPIRUpdate, map[string]any{"motion": upd.Motion, "raw": upd.Raw})
		}
	case ChannelObstacle:
		if c.store.SetObstacle(upd.DistanceCM, upd.Blocked, ts) {
			c.events.Push(models.EventObstacleUpdate, map[string]any{
				"distance_cm": upd.DistanceCM,
				"blocked":     upd.Blocked,
				"raw":         upd.Raw,
			})
		}
	}
	return nil
}
