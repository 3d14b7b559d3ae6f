package possession

import (
	"errors"
	"fmt"

	"github.com/okian/movestat/internal/domain/model"
)

// ErrDivisionUndefined is returned for a speed whose bucket has zero time.
var ErrDivisionUndefined = errors.New("division undefined")

// DivisionError names the player and bucket of an undefined speed.
type DivisionError struct {
	Player model.EntityID
	Bucket Bucket
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("speed %s of player %s: zero time: %v", e.Bucket.Field("speed"), e.Player, ErrDivisionUndefined)
}

func (e *DivisionError) Unwrap() error { return ErrDivisionUndefined }
