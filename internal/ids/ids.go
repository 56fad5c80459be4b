package ids

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// Monotonic entropy so ids minted in the same millisecond still sort in
// creation order; listings rely on ORDER BY id.
var entropy = &ulid.LockedMonotonicReader{
	MonotonicReader: ulid.Monotonic(rand.Reader, 0),
}

func NewULID() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}
