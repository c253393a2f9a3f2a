package game

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cwchanap/grus-server/domain"
	"github.com/cwchanap/grus-server/logger"
)

const joinHandshakeTimeout = 5 * time.Second

type GameHandler struct {
	lobby     Lobby
	roomStore RoomStore
	idGen     UniqueIdGenerator
	verifier  TokenVerifier
	deps      RoomDeps

	upgrader websocket.Upgrader
}

func NewGameHandler(lobby Lobby, roomStore RoomStore, idGen UniqueIdGenerator, verifier TokenVerifier, deps RoomDeps) *GameHandler {
	return &GameHandler{
		lobby:     lobby,
		roomStore: roomStore,
		idGen:     idGen,
		verifier:  verifier,
		deps:      deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RequireSessionMiddleware recovers the player identity from the session
// token. Browsers cannot set headers on a websocket handshake, so the token
// is accepted from the cookie or, failing that, a query parameter.
func (h *GameHandler) RequireSessionMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie("session")
		if err != nil || token == "" {
			token = ctx.Query("token")
		}
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		id, username, err := h.verifier.Verify(token)
		if err != nil {
			logger.Debugf("rejected session token: %v", err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		ctx.Set("id", id)
		ctx.Set("username", username)
		ctx.Next()
	}
}

// createParams come in as query parameters because the request immediately
// upgrades to a websocket.
type createParams struct {
	name          string
	maxPlayers    int
	maxRounds     int
	roundDuration time.Duration
	private       bool
}

func parseCreateParams(ctx *gin.Context) (createParams, string) {
	p := createParams{
		name:          ctx.Query("name"),
		maxPlayers:    DefaultMaxPlayers,
		maxRounds:     DefaultMaxRounds,
		roundDuration: DefaultRoundDuration,
		private:       ctx.Query("private") == "true",
	}

	if raw := ctx.Query("maxPlayers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 2 {
			return p, "maxPlayers must be at least 2"
		}
		if n > 20 {
			return p, "maxPlayers cannot exceed 20"
		}
		p.maxPlayers = n
	}
	if raw := ctx.Query("rounds"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, "rounds must be at least 1"
		}
		if n > 10 {
			return p, "rounds cannot exceed 10"
		}
		p.maxRounds = n
	}
	if raw := ctx.Query("roundDuration"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 30 {
			return p, "roundDuration must be at least 30 seconds"
		}
		if n > 300 {
			return p, "roundDuration cannot exceed 300 seconds"
		}
		p.roundDuration = time.Duration(n) * time.Second
	}
	return p, ""
}

// CreateGameHandler creates the room row, upgrades the connection, and
// hands the new room actor to the lobby with the creator as host.
func (h *GameHandler) CreateGameHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	username := ctx.GetString("username")
	if id == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	params, problem := parseCreateParams(ctx)
	if problem != "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}
	if params.name == "" {
		params.name = username + "'s room"
	}

	roomId := h.idGen.Generate()
	reqCtx := ctx.Request.Context()
	err := h.deps.Rooms.CreateRoom(reqCtx, domain.Room{
		Id:         roomId,
		Name:       params.name,
		HostId:     id,
		MaxPlayers: params.maxPlayers,
		IsActive:   true,
	})
	if err != nil {
		h.idGen.Dispose(roomId)
		logger.Warningf("failed to create room row: %v", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("ws upgrade failed: %v", err)
		h.retireRoom(roomId)
		return
	}
	socketConn := NewWebsocketConnection(conn)

	player := NewPlayer(id, username, &socketConn)
	room := NewRoom(player, RoomConfig{
		Name:          params.name,
		MaxPlayers:    params.maxPlayers,
		MaxRounds:     params.maxRounds,
		RoundDuration: params.roundDuration,
		Private:       params.private,
	}, h.deps)
	room.SetId(roomId)

	h.lobby.RequestAddAndRunRoom(reqCtx, room)
	go player.ReadPump(context.Background())
	go player.WritePump()
}

// JoinGameHandler checks the room against the relational rows before
// upgrading, then hands the join request to the lobby and waits for the
// room actor's verdict.
func (h *GameHandler) JoinGameHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	username := ctx.GetString("username")
	if id == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	roomId := ctx.Param("roomid")
	reqCtx := ctx.Request.Context()

	exists, err := h.roomStore.Exists(reqCtx, roomId)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	if !exists {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}
	hasCapacity, err := h.roomStore.HasCapacity(reqCtx, roomId)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	if !hasCapacity {
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "room-full"})
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("ws upgrade failed: %v", err)
		return
	}
	socketConn := NewWebsocketConnection(conn)

	player := NewPlayer(id, username, &socketConn)
	jreq := NewRoomJoinRequest(player, roomId)
	h.lobby.ForwardPlayerJoinRequestToRoom(reqCtx, jreq)

	select {
	case err := <-jreq.errChan:
		if err != nil {
			socketConn.Close(err.Error())
			return
		}
	case <-time.After(joinHandshakeTimeout):
		socketConn.Close("join timed out")
		return
	}

	go player.ReadPump(context.Background())
	go player.WritePump()
}

func (h *GameHandler) GetPublicGamesHandler(ctx *gin.Context) {
	games := h.lobby.GetPublicGames(ctx.Request.Context())
	if games == nil {
		games = []RoomDescription{}
	}
	ctx.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *GameHandler) retireRoom(roomId string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()
	if err := h.deps.Rooms.DeactivateRoom(ctx, roomId); err != nil {
		logger.Warningf("failed to deactivate room %s: %v", roomId, err)
	}
	h.idGen.Dispose(roomId)
}
