package drawing

import "math"

// DefaultEpsilon is the distance under which a retained move absorbs its
// successor, in canvas units.
const DefaultEpsilon = 2.0

// OptimizeStroke thins a finished stroke. The first and last commands are
// always kept; moves that repeat the previously retained point, or sit
// within epsilon of it, are dropped.
func OptimizeStroke(stroke []Command, epsilon float64) []Command {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	if len(stroke) <= 2 {
		return stroke
	}

	out := make([]Command, 0, len(stroke))
	out = append(out, stroke[0])
	lastX, lastY, hasLast := point(stroke[0])

	for i := 1; i < len(stroke)-1; i++ {
		c := stroke[i]
		if c.Type != CommandMove {
			out = append(out, c)
			lastX, lastY, hasLast = point(c)
			continue
		}
		x, y, ok := point(c)
		if ok && hasLast && math.Hypot(x-lastX, y-lastY) < epsilon {
			continue
		}
		out = append(out, c)
		lastX, lastY, hasLast = x, y, ok
	}

	return append(out, stroke[len(stroke)-1])
}

func point(c Command) (x, y float64, ok bool) {
	if c.X == nil || c.Y == nil {
		return 0, 0, false
	}
	return *c.X, *c.Y, true
}
