package service

import "errors"

// ErrAborted is returned by a fail-fast run after the first match failure.
var ErrAborted = errors.New("run aborted")
