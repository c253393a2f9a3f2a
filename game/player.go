package game

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/time/rate"
)

// Transport-level flood guard, separate from the domain rate limiter: a
// client pushing frames faster than this is misbehaving at the socket
// level and gets its frames dropped before they cost any parsing.
const (
	floodFramesPerSecond = 120
	floodBurst           = 240
)

const sendBufferSize = 256

type wsPlayer struct {
	id        string
	username  string
	flood     *rate.Limiter
	socket    NetworkSession
	inbox     chan []byte
	pingChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	room      Room
}

func NewPlayer(id, username string, socket NetworkSession) *wsPlayer {
	return &wsPlayer{
		id:       id,
		username: username,
		flood:    rate.NewLimiter(rate.Limit(floodFramesPerSecond), floodBurst),
		socket:   socket,
		inbox:    make(chan []byte, sendBufferSize),
		pingChan: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (p *wsPlayer) Id() string {
	return p.id
}

func (p *wsPlayer) Username() string {
	return p.username
}

func (p *wsPlayer) SetRoom(r Room) {
	p.room = r
}

// Send enqueues without blocking the room actor. A full buffer means the
// client stopped draining; the caller treats that like a dead socket.
func (p *wsPlayer) Send(data []byte) error {
	select {
	case <-p.done:
		return ErrPlayerGone
	default:
	}
	select {
	case p.inbox <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (p *wsPlayer) Ping() error {
	select {
	case <-p.done:
		return ErrPlayerGone
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

// CancelAndRelease stops both pumps and closes the socket. Safe to call
// more than once; removal can be requested from several paths.
func (p *wsPlayer) CancelAndRelease() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.socket.Close("")
	})
}

// ReadPump turns inbound frames into envelopes for the room actor. Exiting
// for any reason requests this player's removal, which is what makes a
// transport failure behave exactly like an explicit leave.
func (p *wsPlayer) ReadPump(ctx context.Context) {
	defer func() {
		if p.room != nil {
			p.room.RemoveMe(ctx, p)
		}
	}()

	for {
		data, err := p.socket.Read()
		if err != nil {
			return
		}
		if !p.flood.Allow() {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.Send(mustMarshal(makePacketError("", "malformed message")))
			continue
		}
		p.room.Send(ctx, clientEnvelope{message: msg, from: p})
	}
}

func (p *wsPlayer) WritePump() {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.inbox:
			if err := p.socket.Write(data); err != nil {
				p.CancelAndRelease()
				return
			}
		case <-p.pingChan:
			if err := p.socket.Ping(); err != nil {
				p.CancelAndRelease()
				return
			}
		}
	}
}
