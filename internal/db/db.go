package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique column (user email) is taken.
	ErrConflict = errors.New("already exists")
)

const (
	connectAttempts = 10
	connectBackoff  = time.Second
)

// Connect opens a PostgreSQL connection, retrying with Fibonacci backoff
// while the database comes up.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	var (
		dbx     *sqlx.DB
		attempt int
	)
	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewFibonacci(connectBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		conn, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
		if err != nil {
			log.Error().Err(err).Int("attempt", attempt).Msg("failed to connect to database, retrying")
			return retry.RetryableError(err)
		}
		dbx = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempt, err)
	}
	log.Info().Msg("connected to database")
	return dbx, nil
}

// RunMigrations finds all "*.up.sql" files in migrationsPath (sorted by
// name) and executes them in order. "*.down.sql" files are ignored.
func RunMigrations(ctx context.Context, dbx *sqlx.DB, migrationsPath string) error {
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to glob migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration %q: %w", file, err)
		}
		stmt := strings.TrimSpace(string(raw))
		if stmt == "" {
			continue
		}
		if _, err := dbx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing migration %q: %w", file, err)
		}
		log.Debug().Str("file", filepath.Base(file)).Msg("applied migration")
	}
	return nil
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isInvalidID reports a malformed uuid literal (22P02), which can never
// match a row.
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
