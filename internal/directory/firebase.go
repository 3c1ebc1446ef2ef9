package directory

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/cargolink/freight-backend/internal/service"
)

// FirebaseDirectory resolves user contact details from firebase auth
// records. It is the production implementation of the user-directory
// boundary; the messaging core only ever sees the interface.
type FirebaseDirectory struct {
	client *auth.Client
}

func NewFirebaseDirectory(client *auth.Client) *FirebaseDirectory {
	return &FirebaseDirectory{client: client}
}

func (d *FirebaseDirectory) ResolveContact(ctx context.Context, uid string) (*service.Contact, error) {
	if d.client == nil {
		return nil, fmt.Errorf("auth client not configured")
	}
	u, err := d.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	name := u.DisplayName
	if name == "" {
		name = u.Email
	}
	return &service.Contact{Address: u.Email, Name: name}, nil
}
