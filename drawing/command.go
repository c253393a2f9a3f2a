package drawing

// CommandType tags a single stroke event coming off the drawer's canvas.
type CommandType string

const (
	CommandStart CommandType = "start"
	CommandMove  CommandType = "move"
	CommandEnd   CommandType = "end"
	CommandClear CommandType = "clear"
)

// Command is one atomic stroke event. X and Y are pointers so a missing
// coordinate in the wire payload stays distinguishable from 0.
type Command struct {
	Type      CommandType `json:"type"`
	X         *float64    `json:"x,omitempty"`
	Y         *float64    `json:"y,omitempty"`
	Color     string      `json:"color,omitempty"`
	Size      float64     `json:"size,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

func Start(x, y float64) Command {
	return Command{Type: CommandStart, X: &x, Y: &y}
}

func Move(x, y float64) Command {
	return Command{Type: CommandMove, X: &x, Y: &y}
}

func End() Command {
	return Command{Type: CommandEnd}
}

func Clear() Command {
	return Command{Type: CommandClear}
}

// structural reports whether the command delimits a stroke rather than
// extending one. Structural commands skip throttling and force batch flushes.
func (c Command) structural() bool {
	return c.Type == CommandStart || c.Type == CommandEnd || c.Type == CommandClear
}
