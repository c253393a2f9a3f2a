package game

import (
	"time"

	"github.com/cwchanap/grus-server/drawing"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseDrawing  Phase = "drawing"
	PhaseResults  Phase = "results"
	PhaseFinished Phase = "finished"
)

// PlayerState is one roster entry. Entries are never hard-deleted while the
// game is running; a leaver just flips to disconnected so their score line
// survives.
type PlayerState struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"isHost"`
	IsConnected  bool   `json:"isConnected"`
	LastActivity int64  `json:"lastActivity"`
}

// GameState is the whole round/turn machine. The owning room actor is its
// single writer; it is serialized to the state store after every mutation
// and re-hydrated when the actor starts.
type GameState struct {
	RoomId        string            `json:"roomId"`
	Phase         Phase             `json:"phase"`
	CurrentDrawer string            `json:"currentDrawer"`
	CurrentWord   string            `json:"currentWord"`
	RoundNumber   int               `json:"roundNumber"`
	TimeRemaining int64             `json:"timeRemaining"`
	Players       []PlayerState     `json:"players"`
	Scores        map[string]int    `json:"scores"`
	DrawingData   []drawing.Command `json:"drawingData"`
}

func NewGameState(roomId string) *GameState {
	return &GameState{
		RoomId: roomId,
		Phase:  PhaseWaiting,
		Scores: make(map[string]int),
	}
}

// AddPlayer appends to the roster in join order, or revives an existing
// entry on reconnect. Score keys only ever grow.
func (g *GameState) AddPlayer(p PlayerState) {
	if _, ok := g.Scores[p.Id]; !ok {
		g.Scores[p.Id] = 0
	}
	for i := range g.Players {
		if g.Players[i].Id == p.Id {
			g.Players[i].Name = p.Name
			g.Players[i].IsConnected = true
			g.Players[i].LastActivity = p.LastActivity
			return
		}
	}
	g.Players = append(g.Players, p)
}

// RemovePlayer drops a roster entry entirely. The score key stays. Returns
// whether the removed player was the active drawer.
func (g *GameState) RemovePlayer(playerId string) (wasDrawer bool) {
	for i := range g.Players {
		if g.Players[i].Id == playerId {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	return playerId != "" && playerId == g.CurrentDrawer
}

func (g *GameState) SetConnected(playerId string, connected bool, now time.Time) bool {
	for i := range g.Players {
		if g.Players[i].Id == playerId {
			g.Players[i].IsConnected = connected
			g.Players[i].LastActivity = now.UnixMilli()
			return true
		}
	}
	return false
}

func (g *GameState) Player(playerId string) (PlayerState, bool) {
	for _, p := range g.Players {
		if p.Id == playerId {
			return p, true
		}
	}
	return PlayerState{}, false
}

func (g *GameState) ConnectedCount() int {
	count := 0
	for _, p := range g.Players {
		if p.IsConnected {
			count++
		}
	}
	return count
}

// nextDrawer walks the roster in join order, round-robin over connected
// players only. With no current drawer it picks the first connected player;
// otherwise the next connected one after the current drawer, wrapping.
func (g *GameState) nextDrawer() string {
	if len(g.Players) == 0 {
		return ""
	}

	start := -1
	for i, p := range g.Players {
		if p.Id == g.CurrentDrawer {
			start = i
			break
		}
	}

	for offset := 1; offset <= len(g.Players); offset++ {
		candidate := g.Players[(start+offset)%len(g.Players)]
		if candidate.IsConnected {
			return candidate.Id
		}
	}
	return ""
}

// StartRound moves waiting/results → drawing: picks the next drawer, arms
// the word and timer, clears the canvas, bumps the round counter.
func (g *GameState) StartRound(word string, duration time.Duration) error {
	if g.Phase != PhaseWaiting && g.Phase != PhaseResults {
		return ErrNoActiveRound
	}
	if g.ConnectedCount() < 2 {
		return ErrNotEnoughPlayers
	}
	drawer := g.nextDrawer()
	if drawer == "" {
		return ErrNotEnoughPlayers
	}

	g.CurrentDrawer = drawer
	g.CurrentWord = word
	g.TimeRemaining = duration.Milliseconds()
	g.DrawingData = nil
	g.RoundNumber++
	g.Phase = PhaseDrawing
	return nil
}

// ApplyCorrectGuess books the points and ends the drawing phase. The phase
// guard is what makes a round end at most once: the first correct guess
// flips to results, every later one is rejected.
func (g *GameState) ApplyCorrectGuess(playerId string, guesserPoints, drawerPoints int) error {
	if g.Phase != PhaseDrawing {
		return ErrNoActiveRound
	}
	if playerId == g.CurrentDrawer {
		return ErrDrawerCannotGuess
	}
	if _, ok := g.Player(playerId); !ok {
		return ErrPlayerGone
	}

	g.Scores[playerId] += guesserPoints
	g.Scores[g.CurrentDrawer] += drawerPoints
	g.Phase = PhaseResults
	return nil
}

// TimeoutRound is the phase transition a drained timer triggers.
func (g *GameState) TimeoutRound() {
	if g.Phase == PhaseDrawing {
		g.TimeRemaining = 0
		g.Phase = PhaseResults
	}
}

// EndRound closes out the results phase: the last round finishes the game,
// otherwise the room goes back to waiting for the next StartRound.
func (g *GameState) EndRound(maxRounds int) (finished bool) {
	if g.RoundNumber >= maxRounds {
		g.Finish()
		return true
	}
	g.Phase = PhaseWaiting
	g.CurrentDrawer = ""
	g.CurrentWord = ""
	return false
}

// Finish is the host-initiated (or final-round) end of the game.
func (g *GameState) Finish() {
	g.Phase = PhaseFinished
	g.CurrentDrawer = ""
	g.CurrentWord = ""
}

// TickSecond burns one second of drawing time; true means the round timed
// out. Ticks outside the drawing phase are ignored, which is what makes a
// straggling timer fire harmless.
func (g *GameState) TickSecond() (timedOut bool) {
	if g.Phase != PhaseDrawing {
		return false
	}
	g.TimeRemaining -= 1000
	if g.TimeRemaining <= 0 {
		g.TimeRemaining = 0
		return true
	}
	return false
}

// Winner is the connected player with the strictly highest score; ties go
// to the earliest roster entry.
func (g *GameState) Winner() (playerId string, ok bool) {
	best := 0
	for _, p := range g.Players {
		if !p.IsConnected {
			continue
		}
		score := g.Scores[p.Id]
		if !ok || score > best {
			playerId = p.Id
			best = score
			ok = true
		}
	}
	return playerId, ok
}

// maskedFor hides the secret word from everyone but the drawer while the
// round is live.
func (g *GameState) maskedFor(playerId string) *GameState {
	if g.Phase != PhaseDrawing || playerId == g.CurrentDrawer {
		return g
	}
	masked := *g
	masked.CurrentWord = ""
	return &masked
}
