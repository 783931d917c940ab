package session

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core/identity"
)

// SessionKey is the fixed key under which a browser context's session record is kept.
const SessionKey = "espanol_facil_user"

var (
	ErrNoRecord = errors.New("no session record")

	errMalformedSession = errors.New("malformed session record")
)

type (
	// CredentialStore is the table of identities sessions are resolved against.
	CredentialStore interface {
		Find(pred func(identity.Identity) bool) (identity.Identity, bool)
		// Append must fail with identity.ErrEmailExists when the email is taken.
		Append(i identity.Identity) (identity.Identity, error)
	}

	// Store holds the session record of one browser context.
	Store interface {
		// Get returns ErrNoRecord when there is nothing stored.
		Get(ctx context.Context) ([]byte, error)
		Set(ctx context.Context, data []byte) error
		Delete(ctx context.Context) error
	}

	// Backend hands out the Store of each browser context.
	Backend interface {
		Record(contextID string) Store
	}
)

func encodeRecord(i identity.Identity) ([]byte, error) {
	return json.Marshal(i)
}

func decodeRecord(data []byte) (identity.Identity, error) {
	var i identity.Identity
	if err := json.Unmarshal(data, &i); err != nil {
		return identity.Identity{}, errors.Wrap(errMalformedSession, err.Error())
	}
	if i.ID == "" || i.Email == "" || i.Code == "" || !i.Role.Valid() {
		return identity.Identity{}, errMalformedSession
	}
	return i, nil
}
