package visitor

import (
	"encoding/hex"

	"github.com/storefront-bff/internal/pkg/id"
	"golang.org/x/crypto/blake2b"
)

// Identity is who a request is attributed to for per-visitor state such as
// dismissed banners.
type Identity struct {
	// ID is the anonymous visitor identifier echoed back in X-Visitor-ID.
	ID string
	// UserID is set when the request carried a valid bearer token.
	UserID string
	// Issued is true when ID was minted for this request.
	Issued bool
}

// Resolve returns the Identity for a request. An authenticated user always
// wins; otherwise a well-formed visitor ID from the client is reused, and a
// fresh ULID is issued when none (or a malformed one) was sent.
func Resolve(userID, visitorID string) Identity {
	if visitorID != "" && !id.Valid(visitorID) {
		visitorID = ""
	}
	ident := Identity{ID: visitorID, UserID: userID}
	if ident.ID == "" {
		ident.ID = id.New()
		ident.Issued = true
	}
	return ident
}

// Key returns the opaque storage key for the identity. Raw user IDs and
// visitor IDs never reach the key-value store.
func (i Identity) Key() string {
	subject := "visitor:" + i.ID
	if i.UserID != "" {
		subject = "user:" + i.UserID
	}
	sum := blake2b.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:16])
}
