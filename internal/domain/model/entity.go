package model

// Entity is implemented by every record the backend identifies by a numeric ID.
type Entity interface {
	EntityID() uint
}
