// Package mockstorage provides a testify-based mock implementation
// of the internal storage interface used by the router and service packages.
// It is used for unit testing HTTP handlers by simulating storage behavior.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/authsvc/internal/user"
)

// StorageMock is a testify mock that implements the storage.Storage
// interface.
//
// Use it in router and service tests to simulate database behavior.
type StorageMock struct {
	mock.Mock
}

// FindUserByIdentity mocks the lookup by username OR email.
func (m *StorageMock) FindUserByIdentity(
	ctx context.Context,
	username,
	email string,
	transaction *sql.Tx,
) (*user.User, error) {
	args := m.Called(ctx, username, email, transaction)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// FindUserByEmail mocks the lookup by email.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, email, transaction)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// FindUserByID mocks the lookup by user ID.
func (m *StorageMock) FindUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, userID, transaction)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// CreateUser mocks persisting a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, usr, transaction)
	created, _ := args.Get(0).(*user.User)
	return created, args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
