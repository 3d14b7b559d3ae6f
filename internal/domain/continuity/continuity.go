// Package continuity decides whether a player's displacement across a
// window of frames can be attributed to the same physical player.
//
// The tracking system re-identifies players with new ephemeral track ids
// after brief occlusions, so an id change alone does not break continuity.
// The decision is a heuristic: a span is continuous when ANY configured
// policy accepts it. The default policies accept a span when the track id
// is unchanged, or when the real time elapsed across the window is no
// larger than the nominal window duration plus a slack. Neither guarantees
// that the two observations are the same player.
package continuity

import (
	"strings"

	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/reshape"
)

// Predicate names reported in decisions.
const (
	PredicateTrackID   = "track_id"
	PredicateTimeBound = "time_bound"
	PredicateRejected  = "rejected"
)

// Span is a candidate window for one player, from row i to row i+Window.
type Span struct {
	Player model.EntityID
	Window int
	// FromTrackID and ToTrackID are nil when the record carried no id.
	FromTrackID *int64
	ToTrackID   *int64
	// Elapsed is the real time between the two rows, in seconds.
	Elapsed float64
}

// SpanBetween builds the span for player between two rows.
func SpanBetween(player model.EntityID, from, to *reshape.Row) Span {
	s := Span{
		Player:  player,
		Window:  to.Index - from.Index,
		Elapsed: to.Elapsed - from.Elapsed,
	}
	if o, ok := from.Observations[player]; ok {
		s.FromTrackID = o.TrackID
	}
	if o, ok := to.Observations[player]; ok {
		s.ToTrackID = o.TrackID
	}
	return s
}

// Policy is one continuity predicate.
type Policy interface {
	Name() string
	Continuous(s Span) bool
}

// TrackIDMatch accepts spans whose ephemeral track id did not change.
type TrackIDMatch struct{}

func (TrackIDMatch) Name() string { return PredicateTrackID }

func (TrackIDMatch) Continuous(s Span) bool {
	return s.FromTrackID != nil && s.ToTrackID != nil && *s.FromTrackID == *s.ToTrackID
}

// TimeBound accepts spans whose elapsed time is at most
// Window*FrameDuration + Slack, i.e. no real-time gap hides in the window.
type TimeBound struct {
	FrameDuration float64
	Slack         float64
}

func (TimeBound) Name() string { return PredicateTimeBound }

func (b TimeBound) Continuous(s Span) bool {
	return s.Elapsed <= float64(s.Window)*b.FrameDuration+b.Slack
}

// AnyOf accepts a span when any member policy does.
type AnyOf []Policy

func (a AnyOf) Name() string {
	names := make([]string, len(a))
	for i, p := range a {
		names[i] = p.Name()
	}
	return "any_of(" + strings.Join(names, ",") + ")"
}

func (a AnyOf) Continuous(s Span) bool {
	for _, p := range a {
		if p.Continuous(s) {
			return true
		}
	}
	return false
}

// Decision is the outcome for one span.
type Decision struct {
	Continuous bool
	// Predicate names the first policy that accepted, or PredicateRejected.
	Predicate string
}

// Tracker applies its policies disjunctively.
type Tracker struct {
	policies []Policy
}

// NewTracker builds a Tracker. Without options it uses TrackIDMatch and a
// TimeBound of 0.1s per frame with 0.001s slack.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		policies: []Policy{
			TrackIDMatch{},
			TimeBound{FrameDuration: DefaultFrameDuration, Slack: DefaultSlack},
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policies returns the configured policies in evaluation order.
func (t *Tracker) Policies() []Policy {
	return append([]Policy(nil), t.policies...)
}

// Decide evaluates the policies in order and stops at the first acceptance.
func (t *Tracker) Decide(s Span) Decision {
	for _, p := range t.policies {
		if p.Continuous(s) {
			return Decision{Continuous: true, Predicate: p.Name()}
		}
	}
	return Decision{Predicate: PredicateRejected}
}
