package game

import (
	"math/rand"
	"sync"
)

const roomIdLength = 6

const roomIdAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Idgen hands out short, human-shareable room codes and guarantees no two
// live rooms collide. Dispose returns a code to the pool.
type Idgen struct {
	ids    map[string]struct{}
	locker sync.Mutex
}

func NewIdGen() Idgen {
	return Idgen{ids: make(map[string]struct{})}
}

func (g *Idgen) Generate() string {
	g.locker.Lock()
	defer g.locker.Unlock()

	for {
		buf := make([]byte, roomIdLength)
		for i := range buf {
			buf[i] = roomIdAlphabet[rand.Intn(len(roomIdAlphabet))]
		}
		id := string(buf)
		if _, taken := g.ids[id]; !taken {
			g.ids[id] = struct{}{}
			return id
		}
	}
}

func (g *Idgen) Dispose(id string) {
	g.locker.Lock()
	defer g.locker.Unlock()
	delete(g.ids, id)
}
