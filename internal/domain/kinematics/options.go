package kinematics

import "github.com/okian/movestat/internal/domain/continuity"

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithWindow sets the window length in frames.
func WithWindow(w int) Option {
	return func(e *Estimator) { e.window = w }
}

// WithFrameDuration sets the nominal seconds per frame.
func WithFrameDuration(seconds float64) Option {
	return func(e *Estimator) { e.frameDuration = seconds }
}

// WithTimeMode selects how much time one estimate accounts for.
func WithTimeMode(mode TimeMode) Option {
	return func(e *Estimator) { e.timeMode = mode }
}

// WithTracker sets the continuity tracker. Without it the estimator uses
// the default policies bound to its frame duration.
func WithTracker(t *continuity.Tracker) Option {
	return func(e *Estimator) { e.tracker = t }
}

// WithDecisionObserver registers a callback invoked for every continuity
// decision.
func WithDecisionObserver(fn func(continuity.Decision)) Option {
	return func(e *Estimator) { e.observe = fn }
}
