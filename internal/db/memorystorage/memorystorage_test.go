package memorystorage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/authsvc/internal/db/storage"
	"github.com/patric-chuzhbe/authsvc/internal/user"
)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New()
		assert.NoError(t, err, "The memorystorage.New() should not return error")

		created, err := theStorage.CreateUser(
			context.Background(),
			&user.User{Username: "alice", Email: "a@x.com", PasswordHash: "some-hash"},
			nil,
		)
		assert.NoError(t, err, "The `theStorage.CreateUser()` should not return error")
		assert.NotEmpty(t, created.ID)

		found, err := theStorage.FindUserByEmail(context.Background(), "a@x.com", nil)
		assert.NoError(t, err, "The `theStorage.FindUserByEmail()` should not return error")
		assert.Equal(t, created.ID, found.ID)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}

func TestConcurrentCreateUserKeepsUniqueness(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	const attempts = 20

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = theStorage.CreateUser(
				context.Background(),
				&user.User{Username: "alice", Email: "a@x.com", PasswordHash: "some-hash"},
				nil,
			)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrDuplicateIdentity)
	}

	assert.Equal(t, 1, successes)
	assert.Len(t, theStorage.Cache.Users, 1)
}
