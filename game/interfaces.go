package game

import (
	"context"
	"time"

	"github.com/cwchanap/grus-server/domain"
)

// NetworkSession abstracts the websocket so player pumps are testable.
type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// Player is the room actor's view of one connected client.
type Player interface {
	Id() string
	Username() string
	Send(data []byte) error
	Ping() error
	SetRoom(r Room)
	CancelAndRelease()
}

// Room is the lobby's handle on a running room actor.
type Room interface {
	PingPlayers()
	Send(ctx context.Context, e clientEnvelope)
	RemoveMe(ctx context.Context, p Player)
	RequestJoin(jreq roomJoinRequest)
	Tick(now time.Time)
	GameLoop()
	CloseAndRelease()
	Description() RoomDescription
	SetParentLobby(l Lobby)
	SetId(id string)
}

// Lobby is the handle the room actors and the HTTP handlers share on the
// supervisor actor.
type Lobby interface {
	RequestAddAndRunRoom(ctx context.Context, r Room)
	ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest)
	RequestUpdateDescription(desc RoomDescription)
	RemoveRoom(roomId string)
	GetPublicGames(ctx context.Context) []RoomDescription
}

// RoomStore is the narrow read contract against the relational room rows.
type RoomStore interface {
	Exists(ctx context.Context, roomId string) (bool, error)
	HasCapacity(ctx context.Context, roomId string) (bool, error)
}

// RoomAdmin creates and retires relational room rows.
type RoomAdmin interface {
	CreateRoom(ctx context.Context, room domain.Room) error
	DeactivateRoom(ctx context.Context, roomId string) error
}

// PlayerStore mirrors roster membership into the relational store.
type PlayerStore interface {
	UpsertPlayer(ctx context.Context, player domain.Player) error
	DeletePlayer(ctx context.Context, playerId, roomId string) error
}

// StateStore is the TTL-bounded key-value session cache.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RandomWordsGenerator supplies secret words for a round.
type RandomWordsGenerator interface {
	Generate(count int) []string
}

// UniqueIdGenerator hands out and reclaims room ids.
type UniqueIdGenerator interface {
	Generate() string
	Dispose(id string)
}

// PeriodicTickerChannelCreator lets tests feed the lobby hand-rolled ticks.
type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

// TokenVerifier recovers the session identity the external auth layer
// embedded in the client's token.
type TokenVerifier interface {
	Verify(token string) (id, username string, err error)
}
