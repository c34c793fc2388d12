package domain

import "time"

// CodePurpose scopes a one-time code to the flow that requested it.
type CodePurpose string

const (
	PurposeVerify CodePurpose = "verify"
	PurposeReset  CodePurpose = "reset"
)

// Valid reports whether p is a known purpose.
func (p CodePurpose) Valid() bool {
	return p == PurposeVerify || p == PurposeReset
}

// OneTimeCode is an emailed code awaiting use. Only the fingerprint of the
// code is ever stored.
type OneTimeCode struct {
	ID        string
	Email     string
	CodeHash  string
	Purpose   CodePurpose
	CreatedAt time.Time
	ExpiresAt time.Time
}
