// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting and retrieving user accounts.
// Identity uniqueness is enforced by unique indexes on the users table,
// so concurrent signups with the same username or email cannot both
// succeed regardless of what the application layer checked beforehand.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/authsvc/internal/db/storage"
	"github.com/patric-chuzhbe/authsvc/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the user storage.
// It handles all persistence operations via a PostgreSQL database connection.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
// Optionally accepts initialization options, such as WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

// CreateUser inserts a new user record and returns it with the
// database-assigned ID. A unique-index violation on username or email
// is reported as storage.ErrDuplicateIdentity.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (*user.User, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id`,
		usr.Username,
		usr.Email,
		usr.PasswordHash,
	)
	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, storage.ErrDuplicateIdentity
		}
		return nil, err
	}

	usr.ID = userIDFromDB

	return usr, nil
}

// FindUserByIdentity fetches the user whose username OR email matches
// the given values. Matching is exact, with no normalization.
func (db *PostgresDB) FindUserByIdentity(
	ctx context.Context,
	username,
	email string,
	transaction *sql.Tx,
) (*user.User, error) {
	return db.findUser(
		ctx,
		transaction,
		`SELECT id, username, email, password_hash FROM users WHERE username = $1 OR email = $2`,
		username,
		email,
	)
}

// FindUserByEmail fetches the user with the given email.
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	return db.findUser(
		ctx,
		transaction,
		`SELECT id, username, email, password_hash FROM users WHERE email = $1`,
		email,
	)
}

// FindUserByID fetches the user with the given UUID.
func (db *PostgresDB) FindUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	return db.findUser(
		ctx,
		transaction,
		`SELECT id, username, email, password_hash FROM users WHERE id = $1`,
		userID,
	)
}

func (db *PostgresDB) findUser(
	ctx context.Context,
	transaction *sql.Tx,
	query string,
	args ...any,
) (*user.User, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	row := database.QueryRowContext(ctx, query, args...)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.Email, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}

	return usr, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	err := db.database.Close()
	if err != nil {
		return err
	}

	return nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
