package drawing

import (
	"time"

	"github.com/google/uuid"
)

// BatchIDPrefix makes batch ids recognizable in logs and on the wire.
const BatchIDPrefix = "b_"

// BatchEnvelope is the unit broadcast to guessers as a draw-update.
type BatchEnvelope struct {
	BatchID   string    `json:"batchId"`
	Commands  []Command `json:"commands"`
	Timestamp int64     `json:"timestamp"`
}

// Batch wraps a flushed command slice; ids are unique per call.
func Batch(commands []Command, now time.Time) BatchEnvelope {
	return BatchEnvelope{
		BatchID:   BatchIDPrefix + uuid.NewString(),
		Commands:  commands,
		Timestamp: now.UnixMilli(),
	}
}

// Unbatch is the exact inverse of Batch for the commands field.
func Unbatch(envelope BatchEnvelope) []Command {
	return envelope.Commands
}
