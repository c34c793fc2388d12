package domain

import "time"

// TokenPair is what a successful signup or login hands to the cookie layer.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}
