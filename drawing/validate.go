package drawing

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// Canonical canvas bound. Every call site validates against this one surface.
const (
	MaxCanvasWidth  = 2000.0
	MaxCanvasHeight = 2000.0
)

const (
	MinBrushSize = 1.0
	MaxBrushSize = 50.0
)

var ErrInvalidCommand = errors.New("invalid drawing command")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate rejects any command the server should refuse to forward.
// start/move need finite in-bounds coordinates; end/clear carry none.
func Validate(c Command) error {
	switch c.Type {
	case CommandStart, CommandMove:
	case CommandEnd, CommandClear:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, c.Type)
	}

	if c.X == nil || c.Y == nil {
		return fmt.Errorf("%w: %s requires x and y", ErrInvalidCommand, c.Type)
	}
	x, y := *c.X, *c.Y
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidCommand)
	}
	if x < 0 || x > MaxCanvasWidth || y < 0 || y > MaxCanvasHeight {
		return fmt.Errorf("%w: coordinates (%v, %v) outside canvas", ErrInvalidCommand, x, y)
	}

	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("%w: bad color %q", ErrInvalidCommand, c.Color)
	}
	if c.Size != 0 && (c.Size < MinBrushSize || c.Size > MaxBrushSize) {
		return fmt.Errorf("%w: brush size %v out of range", ErrInvalidCommand, c.Size)
	}
	return nil
}
