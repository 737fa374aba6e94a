package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the services react to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsSerializationConflict is true when the transaction lost a race against a
// concurrent writer and may be retried from scratch.
func IsSerializationConflict(err error) bool {
	code := pgCode(err)
	return code == pgSerializationFailure || code == pgDeadlockDetected
}

func IsForeignKeyViolation(err error) bool { return pgCode(err) == pgForeignKeyViolation }

func IsUniqueViolation(err error) bool { return pgCode(err) == pgUniqueViolation }

func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// conn picks the transaction when one is given, the pool otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
