// Package auth implements the authentication service: it registers new
// users and verifies credentials at sign-in, issuing a session token in
// both cases.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/authsvc/internal/db/storage"
	"github.com/patric-chuzhbe/authsvc/internal/models"
	"github.com/patric-chuzhbe/authsvc/internal/user"
)

// ErrMissingFields is returned when a request lacks a required field.
// It is detected before any storage or hashing work happens.
var ErrMissingFields = errors.New("required fields are missing")

// ErrIdentityExists is returned by Register when the username or email
// is already taken.
var ErrIdentityExists = errors.New("user already exists with this email or username")

// ErrInvalidCredentials is returned by SignIn both for an unknown email
// and for a wrong password. The two cases are deliberately
// indistinguishable so callers cannot probe which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

type userKeeper interface {
	FindUserByIdentity(ctx context.Context, username, email string, transaction *sql.Tx) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error)
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (*user.User, error)
}

type tokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// Service orchestrates registration and sign-in over a user storage and
// a session-token issuer.
type Service struct {
	db        userKeeper
	tokens    tokenIssuer
	validator *validator.Validate
}

// New creates a Service backed by the given storage and token issuer.
func New(db userKeeper, tokens tokenIssuer) *Service {
	return &Service{
		db:        db,
		tokens:    tokens,
		validator: validator.New(),
	}
}

// Register creates a new user account and returns a session token
// together with the sanitized user view.
//
// The password is bcrypt-hashed here, as an inseparable step before the
// record reaches the storage; no caller can persist a plaintext
// password. The duplicate pre-check only produces a fast rejection in
// the common case; the storage's uniqueness enforcement is what makes
// the invariant hold under concurrent registrations.
func (s *Service) Register(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ErrMissingFields
	}

	_, err := s.db.FindUserByIdentity(ctx, req.Username, req.Email, nil)
	if err == nil {
		return nil, ErrIdentityExists
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("checking for an existing user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing the password: %w", err)
	}

	usr, err := s.db.CreateUser(
		ctx,
		&user.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(passwordHash),
		},
		nil,
	)
	if err != nil {
		// A concurrent signup may win between the pre-check and the
		// insert; surface it the same way as the pre-check hit.
		if errors.Is(err, storage.ErrDuplicateIdentity) {
			return nil, ErrIdentityExists
		}
		return nil, fmt.Errorf("creating the user: %w", err)
	}

	return s.respondWithToken(usr)
}

// SignIn verifies the credentials and returns a session token together
// with the sanitized user view. It never mutates storage.
func (s *Service) SignIn(ctx context.Context, req models.SigninRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ErrMissingFields
	}

	usr, err := s.db.FindUserByEmail(ctx, req.Email, nil)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetching the user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respondWithToken(usr)
}

func (s *Service) respondWithToken(usr *user.User) (*models.AuthResponse, error) {
	tokenString, err := s.tokens.Issue(usr.ID, usr.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing the session token: %w", err)
	}

	return &models.AuthResponse{
		Token: tokenString,
		User: models.AuthUser{
			ID:       usr.ID,
			Username: usr.Username,
			Email:    usr.Email,
		},
	}, nil
}
