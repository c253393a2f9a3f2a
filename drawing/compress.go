package drawing

import (
	"encoding/json"
	"math"
)

// Compress serializes commands for the state store, quantizing coordinates
// to one decimal digit. The round trip is deliberately lossy: sub-decimal
// coordinate precision is noise at canvas resolution.
func Compress(commands []Command) []byte {
	quantized := make([]Command, len(commands))
	for i, c := range commands {
		if c.X != nil {
			x := quantize(*c.X)
			c.X = &x
		}
		if c.Y != nil {
			y := quantize(*c.Y)
			c.Y = &y
		}
		quantized[i] = c
	}
	data, err := json.Marshal(quantized)
	if err != nil {
		return []byte("[]")
	}
	return data
}

// Decompress is tolerant: empty, malformed, or non-array payloads yield an
// empty command list, never an error.
func Decompress(data []byte) []Command {
	if len(data) == 0 {
		return []Command{}
	}
	var commands []Command
	if err := json.Unmarshal(data, &commands); err != nil || commands == nil {
		return []Command{}
	}
	return commands
}

func quantize(v float64) float64 {
	return math.Round(v*10) / 10
}
