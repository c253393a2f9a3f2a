package game

import (
	"strconv"
	"time"
)

// State store key layout. Everything the session layer caches is TTL
// bounded; nothing here is durable.
const (
	GameStateTTL   = time.Hour
	PlayerStateTTL = time.Hour
	ChatTTL        = 24 * time.Hour
	RoomPlayersTTL = time.Hour
	DrawingTTL     = time.Hour
)

func gameKey(roomId string) string {
	return "game:" + roomId
}

func playerKey(playerId string) string {
	return "player:" + playerId
}

func chatKey(roomId string, timestamp int64) string {
	return "chat:" + roomId + ":" + strconv.FormatInt(timestamp, 10)
}

func roomPlayersKey(roomId string) string {
	return "room:" + roomId + ":players"
}

func drawingKey(roomId string) string {
	return "drawing:" + roomId
}
