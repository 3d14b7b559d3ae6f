package reconcile

import (
	"errors"
	"fmt"

	"github.com/okian/movestat/internal/domain/model"
)

// ErrReconciliation is returned when a partition does not add up.
var ErrReconciliation = errors.New("reconciliation failed")

// ReconciliationError describes the first identity that failed for a
// player.
type ReconciliationError struct {
	Player   model.EntityID
	Identity string
	// Metric is "dist" or "time".
	Metric      string
	Want        float64
	Got         float64
	Discrepancy float64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("player %s: %s %s: want %g got %g (off by %g): %v",
		e.Player, e.Metric, e.Identity, e.Want, e.Got, e.Discrepancy, ErrReconciliation)
}

func (e *ReconciliationError) Unwrap() error { return ErrReconciliation }
