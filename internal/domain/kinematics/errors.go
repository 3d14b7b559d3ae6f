package kinematics

import "errors"

// ErrInvalidWindow is returned for a window below one frame, a
// non-positive frame duration or an unknown time mode.
var ErrInvalidWindow = errors.New("invalid estimation window")
