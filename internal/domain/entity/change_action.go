package entity

// ChangeAction names a catalog mutation reported to subscribers.
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "CREATE"
	ChangeActionUpdate ChangeAction = "UPDATE"
	ChangeActionDelete ChangeAction = "DELETE"
)
