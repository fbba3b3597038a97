package task

type CreatedEvent struct {
	ActorID uint
	Result  *Task
}

type UpdatedEvent struct {
	ActorID uint
	Result  *Task
}

type StatusChangedEvent struct {
	ActorID uint
	From    Status
	To      Status
	Result  *Task
}

type DeletedEvent struct {
	ActorID uint
	Result  *Task
}
