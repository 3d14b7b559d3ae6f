// Package synth builds tracking frames by hand and generates synthetic
// matches in the SkillCorner layout.
package synth

import "github.com/okian/movestat/internal/domain/model"

// FrameBuilder assembles one raw frame.
type FrameBuilder struct {
	f model.RawFrame
}

// Frame starts a frame at the given period and match clock.
func Frame(frame int64, period int, clock string) *FrameBuilder {
	c, p := clock, period
	return &FrameBuilder{f: model.RawFrame{Frame: frame, Time: &c, Period: &p}}
}

// NullFrame is a frame without time or period, as emitted between periods.
func NullFrame(frame int64) model.RawFrame {
	return model.RawFrame{Frame: frame}
}

// Holder sets the possession holder and the side in possession
// ("home team" or "away team").
func (b *FrameBuilder) Holder(trackable int64, group string) *FrameBuilder {
	t := trackable
	b.f.Possession.TrackableObject = &t
	return b.Side(group)
}

// Side sets the side in possession without a holder.
func (b *FrameBuilder) Side(group string) *FrameBuilder {
	g := group
	b.f.Possession.Group = &g
	return b
}

// Player appends a tracked record for a trackable object.
func (b *FrameBuilder) Player(trackable int64, x, y float64, trackID int64) *FrameBuilder {
	t, id := trackable, trackID
	b.f.Data = append(b.f.Data, model.RawObservation{TrackableObject: &t, X: &x, Y: &y, TrackID: &id})
	return b
}

// Hidden appends a record for a trackable object without coordinates.
func (b *FrameBuilder) Hidden(trackable int64, trackID int64) *FrameBuilder {
	t, id := trackable, trackID
	b.f.Data = append(b.f.Data, model.RawObservation{TrackableObject: &t, TrackID: &id})
	return b
}

// Ball appends the ball record.
func (b *FrameBuilder) Ball(trackable int64, x, y, z float64) *FrameBuilder {
	t := trackable
	b.f.Data = append(b.f.Data, model.RawObservation{TrackableObject: &t, X: &x, Y: &y, Z: &z})
	return b
}

// Group appends a record for an unidentified entity of the given group.
func (b *FrameBuilder) Group(label string, x, y float64, trackID int64) *FrameBuilder {
	l, id := label, trackID
	b.f.Data = append(b.f.Data, model.RawObservation{GroupName: &l, X: &x, Y: &y, TrackID: &id})
	return b
}

// Anonymous appends a record with neither trackable object nor group.
func (b *FrameBuilder) Anonymous(x, y float64) *FrameBuilder {
	b.f.Data = append(b.f.Data, model.RawObservation{X: &x, Y: &y})
	return b
}

// Build returns the frame.
func (b *FrameBuilder) Build() model.RawFrame {
	return b.f
}

// Meta builds match metadata with home team 1, away team 2 and ball 55.
// Each PlayerSpec becomes a roster entry.
func Meta(id int64, players ...PlayerSpec) model.MatchMeta {
	meta := model.MatchMeta{
		ID:       id,
		HomeTeam: model.TeamMeta{ID: HomeTeamID, ShortName: "Home"},
		AwayTeam: model.TeamMeta{ID: AwayTeamID, ShortName: "Away"},
		Ball:     model.BallMeta{TrackableObject: BallObject},
	}
	for _, p := range players {
		team := int64(HomeTeamID)
		if p.Away {
			team = AwayTeamID
		}
		meta.Players = append(meta.Players, model.PlayerMeta{
			ID:              p.Trackable * 10,
			TrackableObject: p.Trackable,
			TeamID:          team,
			FirstName:       p.First,
			LastName:        p.Last,
		})
	}
	return meta
}

// PlayerSpec describes a roster entry for Meta.
type PlayerSpec struct {
	Trackable   int64
	Away        bool
	First, Last string
}

// Fixed ids used by Meta and Generate.
const (
	HomeTeamID = 1
	AwayTeamID = 2
	BallObject = 55
)
