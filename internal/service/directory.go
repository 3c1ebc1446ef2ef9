package service

import "context"

// Contact is the deliverable identity of a user as resolved by the user
// directory.
type Contact struct {
	Address string
	Name    string
}

// UserDirectory is the read-only lookup boundary for user identity. The
// production implementation sits on firebase auth; tests use a fixture map.
type UserDirectory interface {
	ResolveContact(ctx context.Context, uid string) (*Contact, error)
}
