package session

// Command is one logical input applied to the session.
type Command int

const (
	CommandNone Command = iota
	CommandLeft
	CommandRight
	CommandRotate
	CommandSoftDrop
	// CommandGravity is the timer-driven soft drop.
	CommandGravity
	CommandHardDrop
	CommandToggleHelp
	CommandTogglePreview
	CommandToggleColor
	CommandQuit
)

var commandNames = [...]string{
	CommandNone:          "none",
	CommandLeft:          "left",
	CommandRight:         "right",
	CommandRotate:        "rotate",
	CommandSoftDrop:      "soft-drop",
	CommandGravity:       "gravity",
	CommandHardDrop:      "hard-drop",
	CommandToggleHelp:    "toggle-help",
	CommandTogglePreview: "toggle-preview",
	CommandToggleColor:   "toggle-color",
	CommandQuit:          "quit",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}
