package model

import (
	"strconv"
	"strings"
)

const groupPrefix = "group:"

// EntityID identifies a tracked object: a player or the ball by trackable
// object id, or an unidentified entity by its group label.
type EntityID string

// TrackableEntity returns the EntityID for a trackable object id.
func TrackableEntity(id int64) EntityID {
	return EntityID(strconv.FormatInt(id, 10))
}

// GroupEntity returns the EntityID for an unidentified group label such as
// "home team" (stored as "group:home_team").
func GroupEntity(label string) EntityID {
	label = strings.ToLower(strings.TrimSpace(label))
	return EntityID(groupPrefix + strings.ReplaceAll(label, " ", "_"))
}

// IsGroup reports whether the entity is a group label rather than a
// trackable object.
func (e EntityID) IsGroup() bool {
	return strings.HasPrefix(string(e), groupPrefix)
}

// Observation is one tracked object's state within a frame.
type Observation struct {
	Entity EntityID
	X, Y   float64
	// HasPosition is false when the record carried no x or y.
	HasPosition bool
	// Z is populated only for the ball.
	Z *float64
	// TrackID is the tracking system's per-frame id; it is not stable
	// across frames even for the same player.
	TrackID *int64
	Side    Side
}
