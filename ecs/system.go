package ecs

// System is a behavior that runs once per scheduler frame. Systems can hold
// Query and Singleton fields, which the Scheduler binds on registration, and
// any private state that should persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
