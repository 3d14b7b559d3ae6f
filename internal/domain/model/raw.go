package model

// Raw input shapes, as found in SkillCorner open data.

// TeamMeta is a team entry in match metadata.
type TeamMeta struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	ShortName string `json:"short_name"`
}

// BallMeta names the ball's trackable object.
type BallMeta struct {
	TrackableObject int64 `json:"trackable_object"`
}

// PlayerMeta is a roster entry in match metadata.
type PlayerMeta struct {
	ID              int64  `json:"id"`
	TrackableObject int64  `json:"trackable_object"`
	TeamID          int64  `json:"team_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// MatchMeta is the content of match_data.json.
type MatchMeta struct {
	ID       int64        `json:"id"`
	DateTime string       `json:"date_time,omitempty"`
	HomeTeam TeamMeta     `json:"home_team"`
	AwayTeam TeamMeta     `json:"away_team"`
	Ball     BallMeta     `json:"ball"`
	Players  []PlayerMeta `json:"players"`
}

// RawPossession is a frame's possession block.
type RawPossession struct {
	TrackableObject *int64  `json:"trackable_object"`
	Group           *string `json:"group"`
}

// RawObservation is one entry of a frame's data list.
type RawObservation struct {
	TrackableObject *int64   `json:"trackable_object,omitempty"`
	GroupName       *string  `json:"group_name,omitempty"`
	X               *float64 `json:"x"`
	Y               *float64 `json:"y"`
	Z               *float64 `json:"z,omitempty"`
	TrackID         *int64   `json:"track_id,omitempty"`
}

// RawFrame is one entry of structured_data.json.
type RawFrame struct {
	Frame      int64            `json:"frame"`
	Time       *string          `json:"time"`
	Period     *int             `json:"period"`
	Possession RawPossession    `json:"possession"`
	Data       []RawObservation `json:"data"`
}

// MatchIndexEntry is one entry of matches.json.
type MatchIndexEntry struct {
	ID       int64    `json:"id"`
	DateTime string   `json:"date_time"`
	Status   string   `json:"status"`
	HomeTeam TeamMeta `json:"home_team"`
	AwayTeam TeamMeta `json:"away_team"`
}

// Match bundles everything the pipeline consumes for one match.
type Match struct {
	ID     int64
	Date   string
	Meta   MatchMeta
	Frames []RawFrame
}
