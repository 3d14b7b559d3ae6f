package continuity

// Defaults for the time bound policy, in seconds.
const (
	DefaultFrameDuration = 0.1
	DefaultSlack         = 0.001
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithTimeBound replaces the TimeBound policy's frame duration and slack,
// adding the policy if it is absent.
func WithTimeBound(frameDuration, slack float64) Option {
	return func(t *Tracker) {
		if frameDuration <= 0 || slack < 0 {
			return
		}
		bound := TimeBound{FrameDuration: frameDuration, Slack: slack}
		for i, p := range t.policies {
			if _, ok := p.(TimeBound); ok {
				t.policies[i] = bound
				return
			}
		}
		t.policies = append(t.policies, bound)
	}
}

// WithPolicies replaces every policy. An empty list is ignored.
func WithPolicies(policies ...Policy) Option {
	return func(t *Tracker) {
		if len(policies) > 0 {
			t.policies = append([]Policy(nil), policies...)
		}
	}
}
