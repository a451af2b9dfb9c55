package ecs

// UpdateFrame is handed to every system of one schedule run. Structural
// changes queued on Commands land once the schedule finishes.
type UpdateFrame struct {
	Schedule  Schedule
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(schedule Schedule, dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		Schedule:  schedule,
		DeltaTime: dt,
		Commands:  NewCommands(),
		Storage:   storage,
	}
}
