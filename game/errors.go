package game

import "errors"

var (
	ErrRoomFull          = errors.New("room full")
	ErrRoomClosed        = errors.New("room closed")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrNoActiveRound     = errors.New("no active round")
	ErrNotTheDrawer      = errors.New("only the drawer can draw")
	ErrDrawerCannotGuess = errors.New("drawer cannot guess")
	ErrNotTheHost        = errors.New("only the host can do that")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrPlayerGone        = errors.New("player connection is gone")
	ErrSendBufferFull    = errors.New("player send buffer full")
)
