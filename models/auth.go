package models

// Identity is the verified caller extracted from a bearer token. UserID is
// the token's subject claim and keys every per-user record; Email is
// informational and may be empty.
type Identity struct {
	UserID string
	Email  string
}
