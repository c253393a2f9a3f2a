package domain

import "time"

// Room is the relational row behind a game session. The session core only
// ever reads it (existence and capacity checks); creation and teardown are
// owned by the room management surface.
type Room struct {
	Id         string
	Name       string
	HostId     string
	MaxPlayers int
	IsActive   bool
}

// Player is the relational row for a player's membership in a room.
type Player struct {
	Id           string
	RoomId       string
	Name         string
	IsHost       bool
	IsConnected  bool
	LastActivity time.Time
}
