package idgen

import "github.com/google/uuid"

// Generator produces a string unique within the process lifetime, used to
// correlate requests and subscriptions.
type Generator interface {
	NewUUID() string
}

type googleUUID struct{}

// Default returns the canonical-UUID generator a Datastore uses absent an
// explicit WithUUIDGenerator option: 36-character RFC 4122 strings from
// google/uuid.
func Default() Generator {
	return googleUUID{}
}

func (googleUUID) NewUUID() string {
	return uuid.NewString()
}
