package models

import "time"

// Event kinds recorded in the audit log.
const (
	EventDoorUpdate      = "door_update"
	EventGPSUpdate       = "gps_update"
	EventPIRUpdate       = "pir_update"
	EventObstacleUpdate  = "obstacle_update"
	EventCmdPublish      = "cmd_publish"
	EventGPSIngest       = "gps_ingest"
	EventPasswordChanged = "password_changed"
	EventUserAdded       = "user_added"
	EventUserRemoved     = "user_removed"
)

// Event is a single audit log entry. Never mutated after creation.
type Event struct {
	EventID    string         `json:"event_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Kind       string         `json:"kind"`
	Data       map[string]any `json:"data,omitempty"`
}
