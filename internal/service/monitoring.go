package service

import (
	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/models"
	"garage_gateway/internal/state"
)

// MonitoringService serves read-only snapshots of the device state.
type MonitoringService struct {
	store *state.Store
}

func NewMonitoringService(store *state.Store) *MonitoringService {
	return &MonitoringService{store: store}
}

// Snapshot returns a consistent copy of all channels. Never blocks longer
// than the time to copy the state under its lock.
func (s *MonitoringService) Snapshot() models.Snapshot {
	return s.store.Snapshot()
}

// EventLogService serves the bounded audit trail.
type EventLogService struct {
	events *eventlog.Log
}

func NewEventLogService(events *eventlog.Log) *EventLogService {
	return &EventLogService{events: events}
}

// Recent returns the n most recent events, newest first (n clamped by the
// log itself).
func (s *EventLogService) Recent(n int) []models.Event {
	return s.events.Recent(n)
}
