package state

import (
	"sync"
	"time"

	"garage_gateway/internal/models"
)

// Store holds the single authoritative copy of the latest reading per
// channel. One mutex serializes all reads and writes; no I/O happens
// under the lock.
//
// Each setter mutates exactly one channel together with its timestamp and
// refuses updates whose timestamp precedes the channel's current one, so a
// channel's timestamp is monotonically non-decreasing.
type Store struct {
	mu sync.Mutex

	door   int
	doorTS time.Time

	gpsInside bool
	gpsTS     time.Time

	pirMotion bool
	pirTS     time.Time

	obstacleCM      float64
	hasObstacleCM   bool
	obstacleBlocked bool
	obstacleTS      time.Time

	connected bool
}

// NewStore returns a store with all channels at their defaults.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.Snapshot{
		Door:            s.door,
		DoorTS:          s.doorTS,
		GPSInside:       s.gpsInside,
		GPSTS:           s.gpsTS,
		PIRMotion:       s.pirMotion,
		PIRTS:           s.pirTS,
		ObstacleBlocked: s.obstacleBlocked,
		ObstacleTS:      s.obstacleTS,
		MQTTConnected:   s.connected,
	}
	if s.hasObstacleCM {
		cm := s.obstacleCM
		snap.ObstacleCM = &cm
	}
	return snap
}

// SetDoor applies a door reading. Returns false if ts would regress the
// channel's timestamp (stale update, dropped).
func (s *Store) SetDoor(value int, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.Before(s.doorTS) {
		return false
	}
	s.door = value
	s.doorTS = ts
	return true
}

// SetGPS applies a geofence reading.
func (s *Store) SetGPS(inside bool, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.Before(s.gpsTS) {
		return false
	}
	s.gpsInside = inside
	s.gpsTS = ts
	return true
}

// SetPIR applies a motion reading.
func (s *Store) SetPIR(motion bool, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.Before(s.pirTS) {
		return false
	}
	s.pirMotion = motion
	s.pirTS = ts
	return true
}

// SetObstacle applies an obstacle reading (distance plus blocked flag).
func (s *Store) SetObstacle(cm float64, blocked bool, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.Before(s.obstacleTS) {
		return false
	}
	s.obstacleCM = cm
	s.hasObstacleCM = true
	s.obstacleBlocked = blocked
	s.obstacleTS = ts
	return true
}

// SetConnected records the bus connection state. Not a telemetry channel,
// so it carries no timestamp.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
}

// Reset restores all channels to their defaults (test support).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.door = 0
	s.doorTS = time.Time{}
	s.gpsInside = false
	s.gpsTS = time.Time{}
	s.pirMotion = false
	s.pirTS = time.Time{}
	s.obstacleCM = 0
	s.hasObstacleCM = false
	s.obstacleBlocked = false
	s.obstacleTS = time.Time{}
}
