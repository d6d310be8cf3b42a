package session

import (
	"encoding/json"
	"time"
)

// Blob is the serialized session metadata persisted under KeySession. It is
// a denormalized snapshot of the authenticated user, refreshed lazily, and
// is never authoritative: an empty token invalidates whatever it contains.
type Blob struct {
	UserID            int64  `json:"userId,omitempty"`
	Username          string `json:"username,omitempty"`
	Email             string `json:"userEmail,omitempty"`
	Role              string `json:"role,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// decodeBlob parses a stored session blob. Corrupt or empty input yields a
// zero Blob rather than an error so stale garbage can never wedge the client.
func decodeBlob(raw string) Blob {
	var b Blob
	if raw == "" {
		return b
	}
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return Blob{}
	}
	return b
}

func (b Blob) encode() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Grant is the credential material returned by the authentication endpoints.
type Grant struct {
	Token  string
	UserID int64
	Email  string
	Role   string
}

// Identity is the derived, read-only view of the current session. All fields
// collapse to their zero values whenever the stored token is empty, even if
// stale session metadata remains in the store.
type Identity struct {
	UserID            int64
	Username          string
	Email             string
	Role              string
	ProfilePictureURL string
	Token             string
	ExpiresOn         time.Time
}

// LoggedIn reports whether the identity carries a usable bearer token.
func (i Identity) LoggedIn() bool {
	return i.Token != ""
}

// Patch is a partial session update merged into the stored blob. Empty
// fields are left untouched.
type Patch struct {
	Username          string
	Email             string
	ProfilePictureURL string
}
