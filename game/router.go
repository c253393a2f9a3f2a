package game

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cwchanap/grus-server/drawing"
	"github.com/cwchanap/grus-server/logger"
)

// handleEnvelope dispatches one inbound frame. Runs on the room actor, so
// every handler below touches state without locks.
func (r *room) handleEnvelope(env clientEnvelope) {
	p := env.from
	msg := env.message

	if msg.RoomId != "" && msg.RoomId != r.id {
		r.sendError(p, "message addressed to another room")
		return
	}
	if msg.PlayerId != "" && msg.PlayerId != p.Id() {
		r.sendError(p, "playerId does not match the connection")
		return
	}

	switch msg.Type {
	case MsgPing:
		r.sendTo(p, makePacketPong(r.id))
	case MsgChat:
		r.handleChat(p, msg.Data, false)
	case MsgGuess:
		r.handleChat(p, msg.Data, true)
	case MsgDraw:
		r.handleDraw(p, msg.Data)
	case MsgStartGame, MsgNextRound:
		r.handleStartRound(p)
	case MsgEndGame:
		r.handleEndGame(p)
	case MsgLeaveRoom:
		r.handleRemovePlayer(p)
	case MsgJoinRoom:
		// Already joined over this socket; treat as a resync request.
		r.sendSnapshot(p)
	default:
		r.sendError(p, "unknown message type: "+msg.Type)
	}
}

// handleChat serves both plain chat and guesses. A guess from a non-drawer
// that matches the current word (case-insensitive, trimmed) ends the round
// and books the points; everything else is broadcast as chat.
func (r *room) handleChat(p Player, data json.RawMessage, isGuess bool) {
	if !r.limiter.Allow(p.Id(), CategoryMessage) {
		r.sendError(p, "too many messages, slow down")
		return
	}

	var text string
	if isGuess {
		var payload guessPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			r.sendError(p, "malformed guess payload")
			return
		}
		text = payload.Guess
	} else {
		var payload chatPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			r.sendError(p, "malformed chat payload")
			return
		}
		text = payload.Message
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if utf8.RuneCountInString(text) > maxChatLength {
		r.sendError(p, "message too long")
		return
	}

	chat := ChatMessage{
		Id:         uuid.NewString(),
		PlayerId:   p.Id(),
		PlayerName: p.Username(),
		Message:    text,
		Timestamp:  r.now().UnixMilli(),
		IsGuess:    isGuess,
	}

	if r.state.Phase == PhaseDrawing && p.Id() != r.state.CurrentDrawer &&
		strings.EqualFold(text, r.state.CurrentWord) {
		r.resolveCorrectGuess(p, &chat)
	} else if r.state.Phase == PhaseDrawing && p.Id() == r.state.CurrentDrawer &&
		strings.EqualFold(text, r.state.CurrentWord) {
		// The drawer spelling out their own word is dropped, not relayed.
		r.sendError(p, "the drawer cannot guess")
		return
	}

	r.broadcast(makePacketChat(r.id, chat), "")
	r.persistChat(chat)
}

func (r *room) resolveCorrectGuess(p Player, chat *ChatMessage) {
	elapsed := time.Duration(r.roundDuration.Milliseconds()-r.state.TimeRemaining) * time.Millisecond
	guesserPoints := r.scoring.GuessScore(elapsed)
	drawerPoints := r.scoring.DrawerBonus(guesserPoints)
	drawerId := r.state.CurrentDrawer

	if err := r.state.ApplyCorrectGuess(p.Id(), guesserPoints, drawerPoints); err != nil {
		// Lost the race against a timeout or an earlier guess in the same
		// drain; relay the message as an ordinary (wrong) guess.
		return
	}
	chat.IsCorrect = true

	r.drainPipeline()
	r.persistState()
	logger.Infof("[room %s] %s guessed the word (+%d, drawer +%d)", r.id, p.Username(), guesserPoints, drawerPoints)

	r.broadcast(makePacketScoreUpdate(r.id, scoreUpdatePayload{
		Scores:        r.state.Scores,
		GuesserId:     p.Id(),
		GuesserPoints: guesserPoints,
		DrawerId:      drawerId,
		DrawerPoints:  drawerPoints,
	}), "")
	r.broadcastGameState("correct-guess")
}

// handleDraw validates and feeds one drawing command into the
// throttle → buffer pipeline. Only the active drawer may draw.
func (r *room) handleDraw(p Player, data json.RawMessage) {
	if r.state.Phase != PhaseDrawing {
		r.sendError(p, "no round in progress")
		return
	}
	if p.Id() != r.state.CurrentDrawer {
		r.sendError(p, "only the drawer can draw")
		return
	}
	if !r.limiter.Allow(p.Id(), CategoryDrawing) {
		r.sendError(p, "drawing too fast, slow down")
		return
	}

	var cmd drawing.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		r.sendError(p, "malformed drawing payload")
		return
	}
	if err := drawing.Validate(cmd); err != nil {
		r.sendError(p, err.Error())
		return
	}

	now := r.now()
	if cmd.Timestamp == 0 {
		cmd.Timestamp = now.UnixMilli()
	}
	r.acceptDrawing(r.throttle.Push(cmd, now), now)
}

// acceptDrawing applies throttled commands to the canvas record and pushes
// them into the batch buffer.
func (r *room) acceptDrawing(cmds []drawing.Command, now time.Time) {
	for _, cmd := range cmds {
		switch cmd.Type {
		case drawing.CommandClear:
			r.state.DrawingData = nil
			r.strokeStart = 0
		case drawing.CommandStart:
			r.strokeStart = len(r.state.DrawingData)
			r.state.DrawingData = append(r.state.DrawingData, cmd)
		case drawing.CommandEnd:
			r.state.DrawingData = append(r.state.DrawingData, cmd)
			r.thinFinishedStroke()
		default:
			r.state.DrawingData = append(r.state.DrawingData, cmd)
		}

		if batch, ok := r.buffer.Add(cmd, now); ok {
			r.emitBatch(batch, now)
		}
	}
}

// thinFinishedStroke optimizes the stroke that just ended, in place.
func (r *room) thinFinishedStroke() {
	if r.strokeStart >= len(r.state.DrawingData) {
		return
	}
	stroke := r.state.DrawingData[r.strokeStart:]
	thinned := drawing.OptimizeStroke(stroke, drawing.DefaultEpsilon)
	r.state.DrawingData = append(r.state.DrawingData[:r.strokeStart], thinned...)
	r.strokeStart = len(r.state.DrawingData)
}

// emitBatch broadcasts one batch to everyone but the drawer and persists
// the compressed canvas.
func (r *room) emitBatch(batch []drawing.Command, now time.Time) {
	if len(batch) == 0 {
		return
	}
	r.broadcast(makePacketDrawUpdate(r.id, drawing.Batch(batch, now)), r.state.CurrentDrawer)
	r.persistDrawing()
}

// drainPipeline flushes throttle and buffer so nothing drawn before a
// phase transition is lost.
func (r *room) drainPipeline() {
	now := r.now()
	if flushed := r.throttle.Flush(now); len(flushed) > 0 {
		r.acceptDrawing(flushed, now)
	}
	if batch, ok := r.buffer.Destroy(now); ok {
		r.emitBatch(batch, now)
	}
}

// handleStartRound serves both start-game and next-round. Only the host may
// drive the state machine forward.
func (r *room) handleStartRound(p Player) {
	if p.Id() != r.hostId {
		r.sendError(p, "only the host can start a round")
		return
	}

	// start-game and next-round from results both settle the finished
	// round first, so maxRounds is enforced on every path into StartRound.
	if r.state.Phase == PhaseResults {
		if r.state.EndRound(r.maxRounds) {
			r.finishGame("rounds-complete")
			return
		}
	}

	word := r.pickWord()
	if word == "" {
		r.sendError(p, "could not pick a word")
		return
	}
	if err := r.state.StartRound(word, r.roundDuration); err != nil {
		switch err {
		case ErrNotEnoughPlayers:
			r.sendError(p, "need at least two connected players")
		default:
			r.sendError(p, "a round is already in progress")
		}
		return
	}

	// Fresh pipeline for the new canvas.
	r.throttle = drawing.NewThrottle(drawing.DefaultSampleRate)
	r.buffer = drawing.NewBuffer(drawing.DefaultMaxBufferSize, drawing.DefaultFlushInterval, r.now())
	r.strokeStart = 0

	ctx, cancel := r.storeCtx()
	r.states.Delete(ctx, drawingKey(r.id))
	cancel()

	r.persistState()
	r.broadcastGameState("round-started")
	logger.Infof("[room %s] round %d started, drawer=%s", r.id, r.state.RoundNumber, r.state.CurrentDrawer)
}

func (r *room) pickWord() string {
	words := r.wordsGen.Generate(1)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

func (r *room) handleEndGame(p Player) {
	if p.Id() != r.hostId {
		r.sendError(p, "only the host can end the game")
		return
	}
	r.drainPipeline()
	r.finishGame("host-ended")
}

func (r *room) finishGame(reason string) {
	r.state.Finish()
	winnerId, _ := r.state.Winner()
	r.persistState()
	r.broadcast(makePacketScoreUpdate(r.id, scoreUpdatePayload{
		Scores:   r.state.Scores,
		WinnerId: winnerId,
	}), "")
	r.broadcastGameState(reason)
	logger.Infof("[room %s] game over (%s), winner=%s", r.id, reason, winnerId)
}
