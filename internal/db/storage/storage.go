// Package storage declares the contract every user storage backend
// implements and the sentinel errors shared by all of them.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/patric-chuzhbe/authsvc/internal/user"
)

// ErrUserNotFound is returned by the Find* methods when no user matches.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateIdentity is returned by CreateUser when the username or
// email is already taken. The storage's own uniqueness enforcement is
// the authority here, so two concurrent CreateUser calls with the same
// identity can never both succeed.
var ErrDuplicateIdentity = errors.New("username or email already taken")

// Storage is the persistence contract for user accounts.
//
// Username and email matching is exact: backends perform no case
// folding or other normalization.
//
// The transaction parameter may be nil, in which case the backend runs
// the query outside any transaction. File and memory backends ignore it.
type Storage interface {
	// FindUserByIdentity returns the user whose username OR email
	// matches, or ErrUserNotFound.
	FindUserByIdentity(ctx context.Context, username, email string, transaction *sql.Tx) (*user.User, error)

	// FindUserByEmail returns the user with the given email, or ErrUserNotFound.
	FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error)

	// FindUserByID returns the user with the given ID, or ErrUserNotFound.
	FindUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	// CreateUser persists usr, assigns its ID and returns the stored
	// record. Returns ErrDuplicateIdentity when the username or email
	// already exists.
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (*user.User, error)

	Ping(ctx context.Context) error

	Close() error
}
