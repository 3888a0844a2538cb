// Package jsondb implements the user storage on top of a single JSON
// file. It keeps the whole database in memory and flushes it back to
// disk on Close. Intended for local development; the Postgres backend
// is the production posture.
package jsondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/authsvc/internal/db/storage"
	"github.com/patric-chuzhbe/authsvc/internal/user"
)

// CacheStruct is the on-disk layout of the database file.
type CacheStruct struct {
	Users []*user.User
}

// JSONDB is a file-backed user storage. All methods are safe for
// concurrent use; the single mutex is what makes CreateUser atomic with
// respect to the uniqueness check.
type JSONDB struct {
	fileName string
	mutex    sync.Mutex

	Cache CacheStruct
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": []
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New opens (or creates) the database file and loads it into memory.
func New(fileName string) (*JSONDB, error) {
	jsonDB := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(jsonDB.fileName, &jsonDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(jsonDB.fileName, &jsonDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &jsonDB, nil
}

// CreateUser assigns a fresh UUID to usr and stores it.
// The duplicate check and the append happen under one lock, so two
// concurrent calls with the same username or email cannot both succeed.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (*user.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	duplicate := funk.Find(db.Cache.Users, func(existing *user.User) bool {
		return existing.Username == usr.Username || existing.Email == usr.Email
	})
	if duplicate != nil {
		return nil, storage.ErrDuplicateIdentity
	}

	stored := &user.User{
		ID:           uuid.New().String(),
		Username:     usr.Username,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
	}
	db.Cache.Users = append(db.Cache.Users, stored)

	return stored, nil
}

// FindUserByIdentity returns the user whose username OR email matches exactly.
func (db *JSONDB) FindUserByIdentity(
	ctx context.Context,
	username,
	email string,
	transaction *sql.Tx,
) (*user.User, error) {
	return db.findUser(func(usr *user.User) bool {
		return usr.Username == username || usr.Email == email
	})
}

// FindUserByEmail returns the user with the given email.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	return db.findUser(func(usr *user.User) bool {
		return usr.Email == email
	})
}

// FindUserByID returns the user with the given ID.
func (db *JSONDB) FindUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	return db.findUser(func(usr *user.User) bool {
		return usr.ID == userID
	})
}

func (db *JSONDB) findUser(predicate func(*user.User) bool) (*user.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	found, ok := funk.Find(db.Cache.Users, predicate).(*user.User)
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	return found, nil
}

// Ping always succeeds: the database lives in memory.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the in-memory cache back to the database file.
func (db *JSONDB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	err := writeToJSONFile(db.fileName, db.Cache)
	if err != nil {
		return err
	}

	return nil
}
