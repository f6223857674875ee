package models

import "time"

// Door positions reported on the door channel.
const (
	DoorClosed = 0
	DoorOpen   = 1
)

// Snapshot is a read-only copy of the latest reading on every channel.
// Zero timestamps mean the channel has never reported.
type Snapshot struct {
	Door            int       `json:"door"` // 0=closed, 1=open
	DoorTS          time.Time `json:"door_ts"`
	GPSInside       bool      `json:"gps_inside"`
	GPSTS           time.Time `json:"gps_ts"`
	PIRMotion       bool      `json:"pir_motion"`
	PIRTS           time.Time `json:"pir_ts"`
	ObstacleCM      *float64  `json:"obstacle_cm"` // nil until first distance reading
	ObstacleBlocked bool      `json:"obstacle_blocked"`
	ObstacleTS      time.Time `json:"obstacle_ts"`
	MQTTConnected   bool      `json:"mqtt_connected"`
}
