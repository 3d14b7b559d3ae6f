// Package model holds the tracking data model shared by the pipeline stages.
package model

import "strings"

// Team is one side of a match.
type Team struct {
	ID        int64
	ShortName string
	Side      Side
}

// Player is a tracked participant, immutable for the computation.
type Player struct {
	ID        int64
	Entity    EntityID
	TeamID    int64
	Side      Side
	FirstName string
	LastName  string
}

// DisplayName joins first and last name.
func (p Player) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Roster is the match roster resolved from metadata.
type Roster struct {
	Home    Team
	Away    Team
	Ball    EntityID
	Players []Player

	byEntity map[EntityID]int
}

// NewRoster resolves each player's side from its team id.
func NewRoster(meta MatchMeta) (*Roster, error) {
	r := &Roster{
		Home:     Team{ID: meta.HomeTeam.ID, ShortName: meta.HomeTeam.ShortName, Side: SideHome},
		Away:     Team{ID: meta.AwayTeam.ID, ShortName: meta.AwayTeam.ShortName, Side: SideAway},
		Ball:     TrackableEntity(meta.Ball.TrackableObject),
		Players:  make([]Player, 0, len(meta.Players)),
		byEntity: make(map[EntityID]int, len(meta.Players)),
	}
	for _, pm := range meta.Players {
		var side Side
		switch pm.TeamID {
		case meta.HomeTeam.ID:
			side = SideHome
		case meta.AwayTeam.ID:
			side = SideAway
		default:
			return nil, NewDataError(-1, "player %d: team %d is neither home %d nor away %d",
				pm.ID, pm.TeamID, meta.HomeTeam.ID, meta.AwayTeam.ID)
		}
		entity := TrackableEntity(pm.TrackableObject)
		if entity == r.Ball {
			return nil, NewDataError(-1, "player %d shares trackable object %s with the ball", pm.ID, entity)
		}
		if _, dup := r.byEntity[entity]; dup {
			return nil, NewDataError(-1, "trackable object %s listed twice in roster", entity)
		}
		r.byEntity[entity] = len(r.Players)
		r.Players = append(r.Players, Player{
			ID:        pm.ID,
			Entity:    entity,
			TeamID:    pm.TeamID,
			Side:      side,
			FirstName: pm.FirstName,
			LastName:  pm.LastName,
		})
	}
	return r, nil
}

// Player looks up a roster player by entity.
func (r *Roster) Player(e EntityID) (Player, bool) {
	i, ok := r.byEntity[e]
	if !ok {
		return Player{}, false
	}
	return r.Players[i], true
}

// Side returns the roster side of an entity, SideNone for the ball and
// unknown entities.
func (r *Roster) Side(e EntityID) Side {
	if p, ok := r.Player(e); ok {
		return p.Side
	}
	return SideNone
}

// Team returns the team on the given side.
func (r *Roster) Team(s Side) Team {
	switch s {
	case SideHome:
		return r.Home
	case SideAway:
		return r.Away
	default:
		return Team{}
	}
}
