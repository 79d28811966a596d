package engine

import (
	"github.com/Veraticus/spacesub/internal/recurring"
	"github.com/google/uuid"
)

// signatureNamespace scopes name-based suggestion IDs.
var signatureNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("spacesub:suggestion"))

// RandomIDs gives every suggestion a fresh random UUID. IDs from one
// analysis run are never reused by the next.
func RandomIDs() recurring.IDFunc {
	return func(recurring.Group) string {
		return uuid.NewString()
	}
}

// SignatureIDs derives a stable UUID from the user and the group key, so the
// same series keeps its ID across runs.
func SignatureIDs(userID string) recurring.IDFunc {
	return func(g recurring.Group) string {
		return uuid.NewSHA1(signatureNamespace, []byte(userID+"\x00"+g.Key)).String()
	}
}
