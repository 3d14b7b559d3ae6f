package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts a match clock "MM:SS.cc" (minutes may exceed 59) or
// "HH:MM:SS.cc" to seconds.
func ParseClock(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: malformed clock %q", ErrData, s)
	}
	sec, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("%w: malformed clock seconds %q", ErrData, s)
	}
	total := sec
	scale := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		v, err := strconv.Atoi(parts[i])
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: malformed clock %q", ErrData, s)
		}
		total += float64(v) * scale
		scale *= 60
	}
	return total, nil
}
