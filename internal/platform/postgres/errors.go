package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind categorises persistence failures for service-level handling.
type ErrorKind int

const (
	// KindInternal covers failures with no more specific category.
	KindInternal ErrorKind = iota
	// KindNotFound means the referenced row does not exist.
	KindNotFound
	// KindConflict means a uniqueness or state constraint was violated.
	KindConflict
	// KindUnavailable means the database could not be reached in time.
	KindUnavailable
)

// StoreError wraps low-level persistence failures with categorisation used
// by services. It satisfies the repositories.RepositoryError contract.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("postgres: %s failed", e.Op)
	}
	return fmt.Sprintf("postgres: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether the error represents a missing row.
func (e *StoreError) IsNotFound() bool { return e.Kind == KindNotFound }

// IsConflict reports whether the error represents a constraint violation.
func (e *StoreError) IsConflict() bool { return e.Kind == KindConflict }

// IsUnavailable reports whether the error represents an unreachable store.
func (e *StoreError) IsUnavailable() bool { return e.Kind == KindUnavailable }

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Translate maps pgx errors onto StoreError kinds. A nil error passes
// through untouched.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	kind := KindInternal
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		kind = KindNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindUnavailable
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation, pgCheckViolation:
				kind = KindConflict
			case pgForeignKeyViolation:
				kind = KindNotFound
			}
		} else if pgconn.Timeout(err) {
			kind = KindUnavailable
		}
	}

	return &StoreError{Kind: kind, Op: op, Err: err}
}

// NotFound constructs a StoreError for lookups that matched no rows without
// an underlying pgx error, such as conditional updates touching zero rows.
func NotFound(op string) error {
	return &StoreError{Kind: KindNotFound, Op: op, Err: pgx.ErrNoRows}
}
