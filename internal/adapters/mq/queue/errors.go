package queue

import "errors"

// ErrStopped is returned when enqueuing on a closed queue.
var ErrStopped = errors.New("queue stopped")
