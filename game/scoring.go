package game

import (
	"math"
	"time"
)

// Scoring awards time-weighted points for a correct guess. A guess at the
// buzzer is worth half the base score; an instant one the full base. The
// drawer earns half of whatever the guesser earned.
type Scoring struct {
	BaseScore     int
	RoundDuration time.Duration
	TimeBased     bool
	DrawerShare   float64
}

func DefaultScoring(roundDuration time.Duration) Scoring {
	return Scoring{
		BaseScore:     100,
		RoundDuration: roundDuration,
		TimeBased:     true,
		DrawerShare:   0.5,
	}
}

// GuessScore maps time spent guessing to points. Monotonically
// non-increasing in timeUsed, bounded to [base/2, base].
func (s Scoring) GuessScore(timeUsed time.Duration) int {
	if !s.TimeBased || s.RoundDuration <= 0 {
		return s.BaseScore
	}
	total := float64(s.RoundDuration.Milliseconds())
	used := float64(timeUsed.Milliseconds())
	ratio := (total - used) / total
	if ratio < 0 {
		ratio = 0
	}
	base := float64(s.BaseScore)
	return int(math.Floor(base*0.5 + base*0.5*ratio))
}

// DrawerBonus is the drawer's cut of a guesser's earned score.
func (s Scoring) DrawerBonus(guesserScore int) int {
	return int(math.Floor(float64(guesserScore) * s.DrawerShare))
}
