package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoring_GuessScore(t *testing.T) {
	t.Parallel()
	s := DefaultScoring(80 * time.Second)

	t.Run("instant guess earns the full base", func(t *testing.T) {
		assert.Equal(t, 100, s.GuessScore(0))
	})

	t.Run("buzzer guess earns half the base", func(t *testing.T) {
		assert.Equal(t, 50, s.GuessScore(80*time.Second))
	})

	t.Run("overtime clamps to half the base", func(t *testing.T) {
		assert.Equal(t, 50, s.GuessScore(500*time.Second))
	})

	t.Run("halfway guess lands between", func(t *testing.T) {
		assert.Equal(t, 75, s.GuessScore(40*time.Second))
	})

	t.Run("monotonically non-increasing in time used", func(t *testing.T) {
		prev := s.GuessScore(0)
		for used := time.Second; used <= 90*time.Second; used += time.Second {
			score := s.GuessScore(used)
			assert.LessOrEqual(t, score, prev, "score rose at %v", used)
			assert.GreaterOrEqual(t, score, 50)
			assert.LessOrEqual(t, score, 100)
			prev = score
		}
	})

	t.Run("flat scoring ignores time", func(t *testing.T) {
		flat := Scoring{BaseScore: 100, TimeBased: false}
		assert.Equal(t, 100, flat.GuessScore(79*time.Second))
	})
}

func TestScoring_DrawerBonus(t *testing.T) {
	t.Parallel()
	s := DefaultScoring(80 * time.Second)

	assert.Equal(t, 50, s.DrawerBonus(100))
	assert.Equal(t, 37, s.DrawerBonus(75))
	assert.Equal(t, 0, s.DrawerBonus(0))
	assert.Equal(t, 0, s.DrawerBonus(1))
}
