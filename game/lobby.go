package game

import (
	"context"
	"time"

	"github.com/cwchanap/grus-server/domain"
	"github.com/cwchanap/grus-server/logger"
)

// lobby is the supervisor actor: it owns the room table, fans the shared
// tickers out to every room, and routes join requests by room id.
type lobby struct {
	rooms                map[string]Room
	pubRoomsDescriptions map[string]RoomDescription

	addAndRunRoomChan chan Room
	removeRoomChan    chan string
	pubGamesReq       chan chan []RoomDescription
	roomDescUpdate    chan RoomDescription
	roomJoinReqs      chan roomJoinRequest

	idGenerator   UniqueIdGenerator
	tickerCreator PeriodicTickerChannelCreator
}

func NewLobby(idgen UniqueIdGenerator, tickerCreator PeriodicTickerChannelCreator) *lobby {
	return &lobby{
		rooms:                map[string]Room{},
		pubRoomsDescriptions: map[string]RoomDescription{},
		addAndRunRoomChan:    make(chan Room, 32),
		removeRoomChan:       make(chan string, 32),
		pubGamesReq:          make(chan chan []RoomDescription, 256),
		roomDescUpdate:       make(chan RoomDescription, 256),
		roomJoinReqs:         make(chan roomJoinRequest, 256),
		idGenerator:          idgen,
		tickerCreator:        tickerCreator,
	}
}

func (l *lobby) RequestUpdateDescription(desc RoomDescription) {
	select {
	case l.roomDescUpdate <- desc:
	default:
	}
}

func (l *lobby) RequestAddAndRunRoom(ctx context.Context, r Room) {
	select {
	case l.addAndRunRoomChan <- r:
	case <-ctx.Done():
	}
}

func (l *lobby) ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest) {
	select {
	case <-ctx.Done():
	case l.roomJoinReqs <- jreq:
	}
}

func (l *lobby) RemoveRoom(roomId string) {
	l.removeRoomChan <- roomId
}

func (l *lobby) GetPublicGames(ctx context.Context) []RoomDescription {
	respChan := make(chan []RoomDescription, 1)
	select {
	case l.pubGamesReq <- respChan:
		select {
		case resp := <-respChan:
			return resp
		case <-ctx.Done():
			return nil
		}
	case <-ctx.Done():
		return nil
	}
}

func (l *lobby) LobbyActor(started chan struct{}) {
	ticker := l.tickerCreator.Create(time.Second)
	pingTicker := l.tickerCreator.Create(time.Second * 30)

	close(started)

	for {
		select {
		case now := <-ticker:
			for _, r := range l.rooms {
				r.Tick(now)
			}
		case <-pingTicker:
			for _, r := range l.rooms {
				r.PingPlayers()
			}

		case room := <-l.addAndRunRoomChan:
			l.handleAddAndRunRoom(room)

		case roomId := <-l.removeRoomChan:
			l.handleRemoveRoom(roomId)

		case desc := <-l.roomDescUpdate:
			if _, ok := l.rooms[desc.Id]; ok && !desc.Private {
				l.pubRoomsDescriptions[desc.Id] = desc
			}

		case pubGamesReq := <-l.pubGamesReq:
			l.handleGetPublicRoomsDescription(pubGamesReq)

		case joinReq := <-l.roomJoinReqs:
			l.handleJoinReq(joinReq)
		}
	}
}

// handleAddAndRunRoom registers a room whose id was already assigned by the
// creating handler (the id also keys a relational row, so it must exist
// before the room reaches the lobby).
func (l *lobby) handleAddAndRunRoom(r Room) {
	r.SetParentLobby(l)
	rDesc := r.Description()

	l.rooms[rDesc.Id] = r
	go r.GameLoop()
	if rDesc.Private {
		return
	}
	l.pubRoomsDescriptions[rDesc.Id] = rDesc
}

func (l *lobby) handleRemoveRoom(toRemoveId string) {
	room, ok := l.rooms[toRemoveId]
	delete(l.rooms, toRemoveId)
	delete(l.pubRoomsDescriptions, toRemoveId)
	if ok {
		room.CloseAndRelease()
	}
	l.idGenerator.Dispose(toRemoveId)
	logger.Debugf("[lobby] removed room %s, %d remaining", toRemoveId, len(l.rooms))
}

func (l *lobby) handleGetPublicRoomsDescription(req chan []RoomDescription) {
	x := make([]RoomDescription, 0, len(l.pubRoomsDescriptions))
	for _, description := range l.pubRoomsDescriptions {
		x = append(x, description)
	}

	req <- x
}

func (l *lobby) handleJoinReq(joinReq roomJoinRequest) {
	room, ok := l.rooms[joinReq.roomId]
	if !ok {
		joinReq.errChan <- domain.ErrRoomNotFound
		close(joinReq.errChan)
		return
	}
	room.RequestJoin(joinReq)
}
