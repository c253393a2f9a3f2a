package game

import (
	"sort"
	"sync"
)

// Registry maps player ↔ connection ↔ room. It is the only piece of
// cross-room shared state; everything it guards sits behind one mutex and
// its methods do no I/O. A player belongs to at most one room at a time.
type Registry struct {
	locker sync.RWMutex
	conns  map[string]Player
	roomOf map[string]string
	rooms  map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]Player),
		roomOf: make(map[string]string),
		rooms:  make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Register(playerId string, conn Player) {
	r.locker.Lock()
	defer r.locker.Unlock()
	r.conns[playerId] = conn
}

// Unregister drops the connection and implicitly leaves whatever room the
// player was in. It returns that room's id so the caller can run the same
// departure side effects as an explicit leave-room.
func (r *Registry) Unregister(playerId string) (roomId string, ok bool) {
	r.locker.Lock()
	defer r.locker.Unlock()

	_, had := r.conns[playerId]
	delete(r.conns, playerId)
	roomId, inRoom := r.roomOf[playerId]
	if inRoom {
		r.leaveLocked(playerId, roomId)
	}
	return roomId, had && inRoom
}

func (r *Registry) ConnectionOf(playerId string) (Player, bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()
	conn, ok := r.conns[playerId]
	return conn, ok
}

func (r *Registry) PlayersInRoom(roomId string) []string {
	r.locker.RLock()
	defer r.locker.RUnlock()

	members := r.rooms[roomId]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) RoomOf(playerId string) (string, bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()
	roomId, ok := r.roomOf[playerId]
	return roomId, ok
}

func (r *Registry) JoinRoom(playerId, roomId string) {
	r.locker.Lock()
	defer r.locker.Unlock()

	if prev, ok := r.roomOf[playerId]; ok && prev != roomId {
		r.leaveLocked(playerId, prev)
	}
	if r.rooms[roomId] == nil {
		r.rooms[roomId] = make(map[string]struct{})
	}
	r.rooms[roomId][playerId] = struct{}{}
	r.roomOf[playerId] = roomId
}

func (r *Registry) LeaveRoom(playerId, roomId string) {
	r.locker.Lock()
	defer r.locker.Unlock()
	r.leaveLocked(playerId, roomId)
}

func (r *Registry) leaveLocked(playerId, roomId string) {
	if r.roomOf[playerId] != roomId {
		return
	}
	delete(r.roomOf, playerId)
	if members := r.rooms[roomId]; members != nil {
		delete(members, playerId)
		if len(members) == 0 {
			delete(r.rooms, roomId)
		}
	}
}
