package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwchanap/grus-server/drawing"
)

func stateWithPlayers(ids ...string) *GameState {
	g := NewGameState("rid")
	for i, id := range ids {
		g.AddPlayer(PlayerState{Id: id, Name: id, IsHost: i == 0, IsConnected: true})
	}
	return g
}

func TestGameState_StartRound(t *testing.T) {
	t.Parallel()

	t.Run("needs two connected players", func(t *testing.T) {
		g := stateWithPlayers("p1")
		assert.ErrorIs(t, g.StartRound("cat", 80*time.Second), ErrNotEnoughPlayers)
		assert.Equal(t, PhaseWaiting, g.Phase)
	})

	t.Run("first round picks the first joiner", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2", "p3")
		require.NoError(t, g.StartRound("cat", 80*time.Second))

		assert.Equal(t, PhaseDrawing, g.Phase)
		assert.Equal(t, "p1", g.CurrentDrawer)
		assert.Equal(t, "cat", g.CurrentWord)
		assert.Equal(t, 1, g.RoundNumber)
		assert.Equal(t, int64(80000), g.TimeRemaining)
	})

	t.Run("rejects a second start mid-round", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		require.NoError(t, g.StartRound("cat", 80*time.Second))
		assert.ErrorIs(t, g.StartRound("dog", 80*time.Second), ErrNoActiveRound)
		assert.Equal(t, "cat", g.CurrentWord)
		assert.Equal(t, 1, g.RoundNumber)
	})

	t.Run("clears the previous canvas", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		require.NoError(t, g.StartRound("cat", 80*time.Second))
		g.DrawingData = append(g.DrawingData, drawing.Start(10, 10))
		g.TimeoutRound()

		require.NoError(t, g.StartRound("dog", 80*time.Second))
		assert.Empty(t, g.DrawingData)
	})
}

func TestGameState_DrawerRotation(t *testing.T) {
	t.Parallel()

	t.Run("round-robin in join order", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2", "p3")
		var drawers []string
		for i := 0; i < 6; i++ {
			require.NoError(t, g.StartRound("cat", 80*time.Second))
			drawers = append(drawers, g.CurrentDrawer)
			g.TimeoutRound()
			g.EndRound(100)
		}
		assert.Equal(t, []string{"p1", "p2", "p3", "p1", "p2", "p3"}, drawers)
	})

	t.Run("skips disconnected players", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2", "p3")
		require.NoError(t, g.StartRound("cat", 80*time.Second))
		g.TimeoutRound()
		g.EndRound(100)

		g.SetConnected("p2", false, time.Now())
		require.NoError(t, g.StartRound("dog", 80*time.Second))
		assert.Equal(t, "p3", g.CurrentDrawer)
	})
}

func TestGameState_ApplyCorrectGuess(t *testing.T) {
	t.Parallel()

	t.Run("books both scores and ends the phase", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		require.NoError(t, g.StartRound("cat", 80*time.Second))

		require.NoError(t, g.ApplyCorrectGuess("p2", 80, 40))
		assert.Equal(t, 80, g.Scores["p2"])
		assert.Equal(t, 40, g.Scores["p1"])
		assert.Equal(t, PhaseResults, g.Phase)
	})

	t.Run("a round ends at most once", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2", "p3")
		require.NoError(t, g.StartRound("cat", 80*time.Second))

		require.NoError(t, g.ApplyCorrectGuess("p2", 80, 40))
		assert.ErrorIs(t, g.ApplyCorrectGuess("p3", 80, 40), ErrNoActiveRound)
		assert.Equal(t, 0, g.Scores["p3"])
	})

	t.Run("the drawer cannot guess", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		require.NoError(t, g.StartRound("cat", 80*time.Second))
		assert.ErrorIs(t, g.ApplyCorrectGuess("p1", 80, 40), ErrDrawerCannotGuess)
	})

	t.Run("no points outside a round", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		assert.ErrorIs(t, g.ApplyCorrectGuess("p2", 80, 40), ErrNoActiveRound)
	})
}

func TestGameState_TickSecond(t *testing.T) {
	t.Parallel()

	t.Run("drains the timer and reports the timeout", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		require.NoError(t, g.StartRound("cat", 2*time.Second))

		assert.False(t, g.TickSecond())
		assert.True(t, g.TickSecond())
		assert.Equal(t, int64(0), g.TimeRemaining)
	})

	t.Run("straggling ticks outside the drawing phase are ignored", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		assert.False(t, g.TickSecond())
		assert.Equal(t, int64(0), g.TimeRemaining)
	})
}

func TestGameState_LeaversKeepTheirScore(t *testing.T) {
	t.Parallel()
	g := stateWithPlayers("p1", "p2", "p3")
	require.NoError(t, g.StartRound("cat", 80*time.Second))
	require.NoError(t, g.ApplyCorrectGuess("p2", 80, 40))

	g.SetConnected("p2", false, time.Now())
	assert.Equal(t, 80, g.Scores["p2"])

	// Reconnect revives the roster entry without resetting anything.
	g.AddPlayer(PlayerState{Id: "p2", Name: "p2", IsConnected: true})
	assert.Equal(t, 80, g.Scores["p2"])
	assert.Len(t, g.Players, 3)
}

func TestGameState_EndRoundAndWinner(t *testing.T) {
	t.Parallel()

	t.Run("last round finishes the game", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2")
		require.NoError(t, g.StartRound("cat", 80*time.Second))
		g.TimeoutRound()
		assert.False(t, g.EndRound(2))
		assert.Equal(t, PhaseWaiting, g.Phase)

		require.NoError(t, g.StartRound("dog", 80*time.Second))
		g.TimeoutRound()
		assert.True(t, g.EndRound(2))
		assert.Equal(t, PhaseFinished, g.Phase)
	})

	t.Run("winner is the highest connected score, ties to the earlier joiner", func(t *testing.T) {
		g := stateWithPlayers("p1", "p2", "p3")
		g.Scores["p1"] = 50
		g.Scores["p2"] = 90
		g.Scores["p3"] = 90

		winner, ok := g.Winner()
		assert.True(t, ok)
		assert.Equal(t, "p2", winner)

		g.SetConnected("p2", false, time.Now())
		winner, _ = g.Winner()
		assert.Equal(t, "p3", winner)
	})
}

func TestGameState_MaskedFor(t *testing.T) {
	t.Parallel()
	g := stateWithPlayers("p1", "p2")
	require.NoError(t, g.StartRound("cat", 80*time.Second))

	assert.Equal(t, "cat", g.maskedFor("p1").CurrentWord)
	assert.Equal(t, "", g.maskedFor("p2").CurrentWord)

	g.TimeoutRound()
	// Once the round is over the word is public.
	assert.Equal(t, "cat", g.maskedFor("p2").CurrentWord)
}
