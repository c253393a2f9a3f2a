package domain

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room full")
	ErrRoomInactive   = errors.New("room is not active")
	ErrPlayerNotFound = errors.New("player not found")
	ErrDuplicateRoom  = errors.New("room id already taken")
	ErrStateNotFound  = errors.New("game state not found")

	ErrInvalidSigningAlg     = errors.New("invalid signing algorithm")
	ErrExpiredToken          = errors.New("expired token")
	ErrInvalidTokenSignature = errors.New("invalid token signature")
	ErrCorruptedToken        = errors.New("corrupted token")

	UnexpectedDatabaseError          = errors.New("unexpected database error")
	UnexpectedTokenVerificationError = errors.New("unexpected token verification error")
)
