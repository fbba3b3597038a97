package department

type CreatedEvent struct {
	ActorID uint
	Result  *Department
}

type UpdatedEvent struct {
	ActorID uint
	Result  *Department
}

type DeletedEvent struct {
	ActorID uint
	Result  *Department
}

type MemberAddedEvent struct {
	ActorID      uint
	DepartmentID uint
	UserID       uint
}

type MemberRemovedEvent struct {
	ActorID      uint
	DepartmentID uint
	UserID       uint
}
