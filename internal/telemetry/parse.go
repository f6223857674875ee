package telemetry

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Channel identifies one telemetry dimension.
type Channel int

const (
	ChannelDoor Channel = iota
	ChannelGPS
	ChannelPIR
	ChannelObstacle
)

// blockedThresholdCM is the default safety threshold: an obstacle closer
// than this counts as blocking unless the payload says otherwise.
const blockedThresholdCM = 20.0

// Update is a typed reading decoded from one bus message. Only the fields
// for the matching Channel are meaningful.
type Update struct {
	Channel Channel

	Door       int     // ChannelDoor: 0|1
	Inside     bool    // ChannelGPS
	Motion     bool    // ChannelPIR
	DistanceCM float64 // ChannelObstacle
	Blocked    bool    // ChannelObstacle

	Raw string // original payload, kept for the audit trail
}

// Parse decodes a raw payload for the given channel. It returns ok=false
// on any decode failure or out-of-range value; callers drop such messages
// silently, telemetry sources are unauthenticated and not guaranteed
// well-formed.
//
// Decoding policy: structured JSON object with a "value" field first, bare
// integer literal second. The obstacle channel additionally understands
// "distance_cm" and "blocked" fields and a bare float fallback.
func Parse(ch Channel, payload []byte) (Update, bool) {
	raw := strings.TrimSpace(string(payload))
	upd := Update{Channel: ch, Raw: raw}

	if ch == ChannelObstacle {
		return parseObstacle(upd, raw)
	}

	value, ok := decodeValue(raw)
	if !ok || (value != 0 && value != 1) {
		return Update{}, false
	}

	switch ch {
	case ChannelDoor:
		upd.Door = int(value)
	case ChannelGPS:
		upd.Inside = value == 1
	case ChannelPIR:
		upd.Motion = value == 1
	}
	return upd, true
}

// decodeValue extracts a numeric value: JSON object "value" field, or the
// whole payload as a bare integer literal.
func decodeValue(raw string) (float64, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		switch v := obj["value"].(type) {
		case float64:
			return v, true
		case bool:
			if v {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return float64(n), true
	}
	return 0, false
}

// parseObstacle handles the richer obstacle encoding. A structured payload
// may carry "distance_cm", "value" (alias for distance, wins when both are
// present) and an explicit "blocked" flag; otherwise the whole payload is
// tried as a bare float distance. Messages yielding no distance are dropped.
func parseObstacle(upd Update, raw string) (Update, bool) {
	var (
		dist       float64
		hasDist    bool
		blocked    bool
		hasBlocked bool
	)

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if v, ok := obj["distance_cm"].(float64); ok {
			dist, hasDist = v, true
		}
		if v, ok := obj["blocked"].(bool); ok {
			blocked, hasBlocked = v, true
		}
		if v, ok := obj["value"].(float64); ok {
			dist, hasDist = v, true
		}
	} else if v, err := strconv.ParseFloat(raw, 64); err == nil {
		dist, hasDist = v, true
	}

	if !hasDist {
		return Update{}, false
	}
	if !hasBlocked {
		blocked = dist < blockedThresholdCM
	}

	upd.DistanceCM = dist
	upd.Blocked = blocked
	return upd, true
}
