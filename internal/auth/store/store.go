package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// OneTimeCodeTTL is how long an emailed code stays usable. Drivers enforce
// it; callers never compare timestamps themselves.
const OneTimeCodeTTL = 10 * time.Minute

// Store is the root data access interface. Concrete drivers implement this.
// Sub-repositories are reached through methods so a transaction can hand out
// the same repos bound to itself, and so nobody nests transactions by
// accident.
type Store interface {
	Users() Users
	OneTimeCodes() OneTimeCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Inside fn only
	// use the tx argument.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized (trimmed, lowercased) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when the
	// email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	// Returns ErrNotFound when no such user exists.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkVerified flips the verified flag for the account with this email.
	// A missing account is not an error.
	MarkVerified(ctx context.Context, email string) error
}

type OneTimeCodes interface {
	// CreateCode stores c. The driver stamps CreatedAt and ExpiresAt.
	CreateCode(ctx context.Context, c domain.OneTimeCode) (domain.OneTimeCode, error)

	// FindActiveCode returns the unexpired code matching all three keys, or
	// ErrNotFound.
	FindActiveCode(ctx context.Context, email string, purpose domain.CodePurpose, codeHash string) (domain.OneTimeCode, error)

	// DeleteCodes removes every code for email and purpose, expired or not.
	DeleteCodes(ctx context.Context, email string, purpose domain.CodePurpose) error

	// DeleteExpiredCodes is housekeeping. It returns how many rows went.
	DeleteExpiredCodes(ctx context.Context) (int64, error)
}
