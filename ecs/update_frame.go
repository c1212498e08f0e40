package ecs

// UpdateFrame is passed to every system during one Scheduler.Once call.
type UpdateFrame struct {
	// Number counts frames from zero.
	Number   uint64
	Commands *Commands
	Storage  *Storage
}

func newUpdateFrame(number uint64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		Number:   number,
		Commands: newCommands(),
		Storage:  storage,
	}
}
