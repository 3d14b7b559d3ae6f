package model

import "strings"

// Side is the home/away affiliation of a team, a player or a possession.
type Side uint8

const (
	SideNone Side = iota
	SideHome
	SideAway
)

// ParseSide accepts "home", "home team", "away", "away team" in any case.
// Anything else, including the empty string, is SideNone.
func ParseSide(s string) Side {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), " team") {
	case "home":
		return SideHome
	case "away":
		return SideAway
	default:
		return SideNone
	}
}

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return ""
	}
}

// MarshalText encodes the side as "home", "away" or "".
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText and also accepts the
// "home team"/"away team" spelling used by possession groups.
func (s *Side) UnmarshalText(b []byte) error {
	*s = ParseSide(string(b))
	return nil
}
