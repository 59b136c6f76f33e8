package entities

// Command is a logical presentation command
type Command int

const (
	CommandNone Command = iota
	CommandNext
	CommandPrevious
	CommandFirst
	CommandLast
	CommandJump
	CommandResize
	CommandRedraw
	CommandRefreshCapabilities
	CommandReload
	CommandQuit
)

// String returns the command name as used in keybinding configuration
func (c Command) String() string {
	switch c {
	case CommandNext:
		return "next"
	case CommandPrevious:
		return "previous"
	case CommandFirst:
		return "first"
	case CommandLast:
		return "last"
	case CommandJump:
		return "jump"
	case CommandResize:
		return "resize"
	case CommandRedraw:
		return "redraw"
	case CommandRefreshCapabilities:
		return "refresh"
	case CommandReload:
		return "reload"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// Event is one input to the presentation loop
type Event struct {
	Command Command
	// Slide is the 1-based target of CommandJump
	Slide int
	// Size is the new terminal size of CommandResize
	Size WindowSize
	// Err carries a fatal input error; the loop exits when set
	Err error
}

// Next is a convenience constructor for tests and key maps
func Next() Event { return Event{Command: CommandNext} }

// Previous is a convenience constructor
func Previous() Event { return Event{Command: CommandPrevious} }

// JumpTo builds a jump event to a 1-based slide number
func JumpTo(slide int) Event { return Event{Command: CommandJump, Slide: slide} }

// Resize builds a resize event
func Resize(size WindowSize) Event { return Event{Command: CommandResize, Size: size} }

// Quit builds a quit event
func Quit() Event { return Event{Command: CommandQuit} }
