package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, which keeps visitor keys roughly ordered by first visit.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Valid reports whether s parses as a ULID. Used to reject forged or
// truncated visitor identifiers before they reach the key-value store.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
