package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cwchanap/grus-server/domain"
	"github.com/cwchanap/grus-server/drawing"
	"github.com/cwchanap/grus-server/logger"
)

const (
	DefaultMaxPlayers    = 8
	DefaultMaxRounds     = 3
	DefaultRoundDuration = 80 * time.Second
)

const storeOpTimeout = 2 * time.Second

// RoomDescription is the lobby's public snapshot of a room.
type RoomDescription struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	PlayersCount int    `json:"playersCount"`
	MaxPlayers   int    `json:"maxPlayers"`
	Started      bool   `json:"started"`
	Private      bool   `json:"-"`
}

type roomJoinRequest struct {
	roomId  string
	player  Player
	errChan chan error
}

func NewRoomJoinRequest(player Player, roomId string) roomJoinRequest {
	return roomJoinRequest{roomId: roomId, player: player, errChan: make(chan error, 1)}
}

type clientEnvelope struct {
	message ClientMessage
	from    Player
}

type RoomConfig struct {
	Name          string
	MaxPlayers    int
	MaxRounds     int
	RoundDuration time.Duration
	Private       bool
}

func (c RoomConfig) withDefaults() RoomConfig {
	if c.MaxPlayers <= 1 {
		c.MaxPlayers = DefaultMaxPlayers
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.RoundDuration <= 0 {
		c.RoundDuration = DefaultRoundDuration
	}
	return c
}

// RoomDeps carries the shared collaborators every room actor needs.
type RoomDeps struct {
	Registry *Registry
	Limiter  *RateLimiter
	States   StateStore
	Players  PlayerStore
	Rooms    RoomAdmin
	Words    RandomWordsGenerator
}

// room is the actor that exclusively owns one game session: its GameState,
// its player set, and its timer. Everything reaches it through channels.
type room struct {
	id            string
	name          string
	hostId        string
	private       bool
	maxPlayers    int
	maxRounds     int
	roundDuration time.Duration

	registry    *Registry
	limiter     *RateLimiter
	states      StateStore
	playerStore PlayerStore
	roomAdmin   RoomAdmin
	wordsGen    RandomWordsGenerator
	scoring     Scoring

	state   *GameState
	players []Player

	throttle    *drawing.Throttle
	buffer      *drawing.Buffer
	strokeStart int

	parentLobby Lobby
	inbox       chan clientEnvelope
	joinReqs    chan roomJoinRequest
	removeMe    chan Player
	ticks       chan time.Time
	pingPlayers chan struct{}
	done        chan struct{}
	closeOnce   sync.Once

	now func() time.Time
}

func NewRoom(host Player, cfg RoomConfig, deps RoomDeps) *room {
	cfg = cfg.withDefaults()
	now := time.Now

	r := &room{
		name:          cfg.Name,
		hostId:        host.Id(),
		private:       cfg.Private,
		maxPlayers:    cfg.MaxPlayers,
		maxRounds:     cfg.MaxRounds,
		roundDuration: cfg.RoundDuration,
		registry:      deps.Registry,
		limiter:       deps.Limiter,
		states:        deps.States,
		playerStore:   deps.Players,
		roomAdmin:     deps.Rooms,
		wordsGen:      deps.Words,
		scoring:       DefaultScoring(cfg.RoundDuration),
		state:         NewGameState(""),
		players:       make([]Player, 0, cfg.MaxPlayers),
		throttle:      drawing.NewThrottle(drawing.DefaultSampleRate),
		buffer:        drawing.NewBuffer(drawing.DefaultMaxBufferSize, drawing.DefaultFlushInterval, now()),
		inbox:         make(chan clientEnvelope, 1024),
		joinReqs:      make(chan roomJoinRequest, 16),
		removeMe:      make(chan Player, 64),
		ticks:         make(chan time.Time, 1),
		pingPlayers:   make(chan struct{}, 1),
		done:          make(chan struct{}),
		now:           now,
	}

	host.SetRoom(r)
	r.players = append(r.players, host)
	r.state.AddPlayer(PlayerState{
		Id:           host.Id(),
		Name:         host.Username(),
		IsHost:       true,
		IsConnected:  true,
		LastActivity: now().UnixMilli(),
	})
	return r
}

func (r *room) SetId(id string) {
	r.id = id
	r.state.RoomId = id
}

func (r *room) SetParentLobby(l Lobby) {
	r.parentLobby = l
}

func (r *room) Description() RoomDescription {
	return RoomDescription{
		Id:           r.id,
		Name:         r.name,
		PlayersCount: len(r.players),
		MaxPlayers:   r.maxPlayers,
		Started:      r.state.RoundNumber > 0,
		Private:      r.private,
	}
}

// Tick is called from the lobby actor. Dropping a tick under load is fine;
// the next one lands a second later.
func (r *room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *room) PingPlayers() {
	select {
	case r.pingPlayers <- struct{}{}:
	default:
	}
}

func (r *room) Send(ctx context.Context, e clientEnvelope) {
	select {
	case r.inbox <- e:
	case <-r.done:
	case <-ctx.Done():
	}
}

func (r *room) RemoveMe(ctx context.Context, p Player) {
	select {
	case r.removeMe <- p:
	case <-r.done:
	case <-ctx.Done():
	}
}

func (r *room) RequestJoin(jreq roomJoinRequest) {
	select {
	case r.joinReqs <- jreq:
	case <-r.done:
		jreq.errChan <- ErrRoomClosed
	}
}

// CloseAndRelease just trips the done flag; actual teardown happens inside
// GameLoop so nothing races the actor.
func (r *room) CloseAndRelease() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

func (r *room) GameLoop() {
	r.bootstrap()
	for {
		select {
		case <-r.done:
			r.teardown()
			return
		case env := <-r.inbox:
			r.handleEnvelope(env)
		case jreq := <-r.joinReqs:
			r.handleJoinRequest(jreq)
		case p := <-r.removeMe:
			r.handleRemovePlayer(p)
		case now := <-r.ticks:
			r.handleTick(now)
		case <-r.pingPlayers:
			r.handlePing()
		}
	}
}

// bootstrap re-hydrates persisted state (an actor restart with the same
// room id picks up scores and round position), registers the founding
// players, and sends them their first snapshot.
func (r *room) bootstrap() {
	r.hydrate()
	now := r.now()
	for _, p := range r.players {
		r.registry.Register(p.Id(), p)
		r.registry.JoinRoom(p.Id(), r.id)
		r.state.SetConnected(p.Id(), true, now)
		r.persistPlayer(p.Id())
	}
	r.persistState()
	r.persistRoster()
	for _, p := range r.players {
		r.sendSnapshot(p)
	}
	logger.Infof("[room %s] started with %d player(s)", r.id, len(r.players))
}

func (r *room) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	data, err := r.states.Get(ctx, gameKey(r.id))
	if err != nil {
		return
	}
	stored := NewGameState(r.id)
	if err := json.Unmarshal(data, stored); err != nil {
		logger.Warningf("[room %s] discarding corrupt cached state: %v", r.id, err)
		return
	}
	for _, p := range r.players {
		stored.AddPlayer(PlayerState{Id: p.Id(), Name: p.Username(), IsHost: p.Id() == r.hostId, IsConnected: true})
	}
	stored.RoomId = r.id
	r.state = stored

	if raw, err := r.states.Get(ctx, drawingKey(r.id)); err == nil {
		r.state.DrawingData = drawing.Decompress(raw)
	}
}

func (r *room) handleJoinRequest(jreq roomJoinRequest) {
	p := jreq.player

	if r.state.Phase == PhaseFinished {
		jreq.errChan <- ErrRoomClosed
		return
	}

	// Reconnect: same player id on a fresh socket replaces the old one.
	if old, idx := r.playerById(p.Id()); old != nil {
		old.CancelAndRelease()
		r.players[idx] = p
	} else {
		if len(r.players) >= r.maxPlayers {
			jreq.errChan <- ErrRoomFull
			return
		}
		r.players = append(r.players, p)
	}

	now := r.now()
	p.SetRoom(r)
	r.state.AddPlayer(PlayerState{
		Id:           p.Id(),
		Name:         p.Username(),
		IsHost:       p.Id() == r.hostId,
		IsConnected:  true,
		LastActivity: now.UnixMilli(),
	})
	r.registry.Register(p.Id(), p)
	r.registry.JoinRoom(p.Id(), r.id)

	r.persistState()
	r.persistRoster()
	r.persistPlayer(p.Id())

	joined, _ := r.state.Player(p.Id())
	r.broadcast(makePacketPlayerJoined(r.id, joined), p.Id())
	r.sendSnapshot(p)
	r.updateLobbyDescription()

	logger.Infof("[room %s] %s joined (%d/%d)", r.id, p.Username(), len(r.players), r.maxPlayers)
	jreq.errChan <- nil
}

// handleRemovePlayer is the single departure path: explicit leave-room
// frames, read-pump exits, and failed broadcasts all land here.
func (r *room) handleRemovePlayer(p Player) {
	existing, idx := r.playerById(p.Id())
	if existing == nil {
		return
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	now := r.now()
	r.registry.Unregister(p.Id())
	r.limiter.Forget(p.Id())
	p.CancelAndRelease()

	wasDrawer := r.state.Phase == PhaseDrawing && p.Id() == r.state.CurrentDrawer

	if r.state.RoundNumber == 0 && r.state.Phase == PhaseWaiting {
		// Nothing has happened yet; drop the roster entry entirely.
		r.state.RemovePlayer(p.Id())
		r.deletePlayerRow(p.Id())
	} else {
		r.state.SetConnected(p.Id(), false, now)
		r.persistPlayer(p.Id())
	}

	left, ok := r.state.Player(p.Id())
	if !ok {
		left = PlayerState{Id: p.Id(), Name: p.Username()}
	}
	r.broadcast(makePacketPlayerLeft(r.id, left), "")

	if wasDrawer {
		r.finishDrawingPhase("drawer-left")
	}

	r.persistState()
	r.persistRoster()
	r.updateLobbyDescription()
	logger.Infof("[room %s] %s left (%d remaining)", r.id, p.Username(), len(r.players))

	if len(r.players) == 0 && r.parentLobby != nil {
		r.parentLobby.RemoveRoom(r.id)
	}
}

func (r *room) handleTick(now time.Time) {
	if flushed := r.throttle.Flush(now); len(flushed) > 0 {
		r.acceptDrawing(flushed, now)
	}
	if batch, ok := r.buffer.FlushDue(now); ok {
		r.emitBatch(batch, now)
	}

	if r.state.Phase != PhaseDrawing {
		return
	}
	if r.state.TickSecond() {
		r.finishDrawingPhase("timeout")
	}
	r.persistState()
}

func (r *room) handlePing() {
	for _, p := range r.players {
		if err := p.Ping(); err != nil {
			r.queueRemoval(p)
		}
	}
}

// finishDrawingPhase moves drawing → results, draining the pipeline first
// so no stroke data is lost at the transition.
func (r *room) finishDrawingPhase(reason string) {
	r.drainPipeline()
	r.state.TimeoutRound()
	r.persistState()
	r.broadcastGameState(reason)
}

func (r *room) teardown() {
	for _, p := range r.players {
		r.registry.Unregister(p.Id())
		r.limiter.Forget(p.Id())
		p.CancelAndRelease()
	}
	r.players = nil
	r.persistState()
	ctx, cancel := r.storeCtx()
	if err := r.roomAdmin.DeactivateRoom(ctx, r.id); err != nil {
		logger.Warningf("[room %s] failed to deactivate room row: %v", r.id, err)
	}
	cancel()
	logger.Infof("[room %s] closed", r.id)
}

func (r *room) playerById(id string) (Player, int) {
	for i, p := range r.players {
		if p.Id() == id {
			return p, i
		}
	}
	return nil, -1
}

func (r *room) queueRemoval(p Player) {
	select {
	case r.removeMe <- p:
	default:
	}
}

// --- outbound ---

// broadcast fans one packet to every player in the room, optionally
// skipping one id. A failed send schedules that player's disconnect and
// never blocks delivery to the rest.
func (r *room) broadcast(msg ServerMessage, excludeId string) {
	data := mustMarshal(msg)
	for _, p := range r.players {
		if p.Id() == excludeId {
			continue
		}
		if err := p.Send(data); err != nil {
			r.queueRemoval(p)
		}
	}
}

func (r *room) sendTo(p Player, msg ServerMessage) {
	if err := p.Send(mustMarshal(msg)); err != nil {
		r.queueRemoval(p)
	}
}

func (r *room) sendError(p Player, message string) {
	r.sendTo(p, makePacketError(r.id, message))
}

// broadcastGameState sends per-player payloads so the secret word only
// ever reaches the drawer.
func (r *room) broadcastGameState(reason string) {
	for _, p := range r.players {
		r.sendTo(p, makePacketGameState(r.id, r.state.maskedFor(p.Id()), reason))
	}
}

func (r *room) sendSnapshot(p Player) {
	r.sendTo(p, makePacketGameState(r.id, r.state.maskedFor(p.Id()), "sync"))
	if len(r.state.DrawingData) > 0 {
		r.sendTo(p, makePacketDrawUpdate(r.id, drawing.Batch(r.state.DrawingData, r.now())))
	}
}

func (r *room) updateLobbyDescription() {
	if r.parentLobby != nil {
		r.parentLobby.RequestUpdateDescription(r.Description())
	}
}

// --- persistence ---

func (r *room) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeOpTimeout)
}

func (r *room) persistState() {
	data, err := json.Marshal(r.state)
	if err != nil {
		logger.Criticalf("[room %s] failed to marshal game state: %v", r.id, err)
		return
	}
	ctx, cancel := r.storeCtx()
	defer cancel()
	if err := r.states.Put(ctx, gameKey(r.id), data, GameStateTTL); err != nil {
		logger.Warningf("[room %s] failed to persist game state: %v", r.id, err)
	}
}

func (r *room) persistRoster() {
	ids := make([]string, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		ids = append(ids, p.Id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	ctx, cancel := r.storeCtx()
	defer cancel()
	if err := r.states.Put(ctx, roomPlayersKey(r.id), data, RoomPlayersTTL); err != nil {
		logger.Warningf("[room %s] failed to persist roster: %v", r.id, err)
	}
}

func (r *room) persistPlayer(playerId string) {
	ps, ok := r.state.Player(playerId)
	if !ok {
		return
	}
	ctx, cancel := r.storeCtx()
	defer cancel()

	if data, err := json.Marshal(ps); err == nil {
		if err := r.states.Put(ctx, playerKey(playerId), data, PlayerStateTTL); err != nil {
			logger.Warningf("[room %s] failed to cache player %s: %v", r.id, playerId, err)
		}
	}
	row := domain.Player{
		Id:           ps.Id,
		RoomId:       r.id,
		Name:         ps.Name,
		IsHost:       ps.IsHost,
		IsConnected:  ps.IsConnected,
		LastActivity: time.UnixMilli(ps.LastActivity),
	}
	if err := r.playerStore.UpsertPlayer(ctx, row); err != nil {
		logger.Warningf("[room %s] failed to upsert player row %s: %v", r.id, playerId, err)
	}
}

func (r *room) deletePlayerRow(playerId string) {
	ctx, cancel := r.storeCtx()
	defer cancel()
	if err := r.playerStore.DeletePlayer(ctx, playerId, r.id); err != nil {
		logger.Warningf("[room %s] failed to delete player row %s: %v", r.id, playerId, err)
	}
	r.states.Delete(ctx, playerKey(playerId))
}

func (r *room) persistChat(chat ChatMessage) {
	data, err := json.Marshal(chat)
	if err != nil {
		return
	}
	ctx, cancel := r.storeCtx()
	defer cancel()
	if err := r.states.Put(ctx, chatKey(r.id, chat.Timestamp), data, ChatTTL); err != nil {
		logger.Warningf("[room %s] failed to cache chat message: %v", r.id, err)
	}
}

func (r *room) persistDrawing() {
	ctx, cancel := r.storeCtx()
	defer cancel()
	if err := r.states.Put(ctx, drawingKey(r.id), drawing.Compress(r.state.DrawingData), DrawingTTL); err != nil {
		logger.Warningf("[room %s] failed to persist drawing data: %v", r.id, err)
	}
}
