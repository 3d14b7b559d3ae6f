package source

import "errors"

// ErrSourceMissing is returned when a required data file does not exist.
var ErrSourceMissing = errors.New("source data missing")
