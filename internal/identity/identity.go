// Package identity provides the stable 128-bit identifier carried by every
// node of an object graph. Identifiers are used as document keys and as the
// payload of reference tokens in the serialized archive.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a universally unique 128-bit identifier.
type ID uuid.UUID

// Nil is the zero identifier. It is never assigned to a live object.
var Nil ID

// New returns a fresh random (version 4) identifier.
func New() ID {
	return ID(uuid.New())
}

// Parse decodes the canonical textual form of an identifier.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("parsing identity %q: %w", s, err)
	}

	return ID(u), nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for tests and static fixtures.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return id
}

// FromName derives a deterministic identifier from a namespace-scoped name
// (UUID version 5). Manifests use it so repeated runs produce stable output.
func FromName(namespace ID, name string) ID {
	return ID(uuid.NewSHA1(uuid.UUID(namespace), []byte(name)))
}

// IsNil reports whether id is the zero identifier.
func (id ID) IsNil() bool {
	return id == Nil
}

// String returns the canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}
