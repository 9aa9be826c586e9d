// Package kind holds the type discriminators written into every serialized
// story entity.
package kind

import (
	"errors"
	"fmt"
)

const (
	Story      = "story"
	Scene      = "scene"
	Character  = "character"
	Location   = "location"
	TimePeriod = "time_period"
	ImageSet   = "image_set"
)

// ErrMismatch is returned when a document holds a different entity than the
// one being decoded.
var ErrMismatch = errors.New("kind mismatch")

// Check verifies a decoded discriminator.
func Check(got, want string) error {
	if got != want {
		return fmt.Errorf("%w: got %q, want %q", ErrMismatch, got, want)
	}
	return nil
}
