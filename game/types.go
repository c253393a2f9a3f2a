package game

import (
	"encoding/json"

	"github.com/cwchanap/grus-server/drawing"
)

// Client → server frame types.
const (
	MsgJoinRoom  = "join-room"
	MsgLeaveRoom = "leave-room"
	MsgChat      = "chat"
	MsgDraw      = "draw"
	MsgGuess     = "guess"
	MsgStartGame = "start-game"
	MsgNextRound = "next-round"
	MsgEndGame   = "end-game"
	MsgPing      = "ping"
)

// Server → client frame types.
const (
	MsgRoomUpdate  = "room-update"
	MsgChatMessage = "chat-message"
	MsgDrawUpdate  = "draw-update"
	MsgGameState   = "game-state"
	MsgScoreUpdate = "score-update"
	MsgPong        = "pong"
)

// ClientMessage is the envelope every inbound frame must parse into.
type ClientMessage struct {
	Type     string          `json:"type"`
	RoomId   string          `json:"roomId"`
	PlayerId string          `json:"playerId"`
	Data     json.RawMessage `json:"data"`
}

// ServerMessage is the outbound envelope.
type ServerMessage struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId"`
	Data   any    `json:"data"`
}

// ChatMessage is broadcast for every accepted chat or guess frame.
type ChatMessage struct {
	Id         string `json:"id"`
	PlayerId   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
	IsGuess    bool   `json:"isGuess"`
	IsCorrect  bool   `json:"isCorrect"`
}

const maxChatLength = 200

type chatPayload struct {
	Message string `json:"message"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

type roomUpdatePayload struct {
	Type    string       `json:"type"`
	Player  *PlayerState `json:"player,omitempty"`
	Message string       `json:"message,omitempty"`
}

type gameStatePayload struct {
	State  *GameState `json:"state"`
	Reason string     `json:"reason,omitempty"`
}

type scoreUpdatePayload struct {
	Scores        map[string]int `json:"scores"`
	GuesserId     string         `json:"guesserId,omitempty"`
	GuesserPoints int            `json:"guesserPoints,omitempty"`
	DrawerId      string         `json:"drawerId,omitempty"`
	DrawerPoints  int            `json:"drawerPoints,omitempty"`
	WinnerId      string         `json:"winnerId,omitempty"`
}

func makePacketPlayerJoined(roomId string, player PlayerState) ServerMessage {
	return ServerMessage{
		Type:   MsgRoomUpdate,
		RoomId: roomId,
		Data:   roomUpdatePayload{Type: "player-joined", Player: &player},
	}
}

func makePacketPlayerLeft(roomId string, player PlayerState) ServerMessage {
	return ServerMessage{
		Type:   MsgRoomUpdate,
		RoomId: roomId,
		Data:   roomUpdatePayload{Type: "player-left", Player: &player},
	}
}

// Errors ride inside a room-update envelope with data.type="error". Clients
// have depended on this shape since the first release, so it stays.
func makePacketError(roomId, message string) ServerMessage {
	return ServerMessage{
		Type:   MsgRoomUpdate,
		RoomId: roomId,
		Data:   roomUpdatePayload{Type: "error", Message: message},
	}
}

func makePacketChat(roomId string, chat ChatMessage) ServerMessage {
	return ServerMessage{Type: MsgChatMessage, RoomId: roomId, Data: chat}
}

func makePacketGameState(roomId string, state *GameState, reason string) ServerMessage {
	return ServerMessage{
		Type:   MsgGameState,
		RoomId: roomId,
		Data:   gameStatePayload{State: state, Reason: reason},
	}
}

func makePacketDrawUpdate(roomId string, batch drawing.BatchEnvelope) ServerMessage {
	return ServerMessage{Type: MsgDrawUpdate, RoomId: roomId, Data: batch}
}

func makePacketScoreUpdate(roomId string, payload scoreUpdatePayload) ServerMessage {
	return ServerMessage{Type: MsgScoreUpdate, RoomId: roomId, Data: payload}
}

func makePacketPong(roomId string) ServerMessage {
	return ServerMessage{Type: MsgPong, RoomId: roomId}
}

func mustMarshal(msg ServerMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		// Payload types are all plain structs; a marshal failure is a bug.
		panic(err)
	}
	return data
}
