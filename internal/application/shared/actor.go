package shared

import "github.com/google/uuid"

// Actor is the caller of an application operation as established by the
// transport layer. The zero value is an anonymous visitor.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Admin  bool
}

// Anonymous returns an actor without identity
func Anonymous() Actor {
	return Actor{}
}

// IsAuthenticated reports whether the caller presented a valid identity
func (a Actor) IsAuthenticated() bool {
	return a.UserID != uuid.Nil
}

// UserIDPtr returns the caller's ID, or nil for anonymous callers
func (a Actor) UserIDPtr() *uuid.UUID {
	if !a.IsAuthenticated() {
		return nil
	}
	id := a.UserID
	return &id
}
