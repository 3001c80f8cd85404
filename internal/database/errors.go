package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Postgres SQLSTATE classes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MySQL error numbers for the same conditions.
const (
	myDuplicateEntry    = 1062
	myRowIsReferenced   = 1451
	myNoReferencedRow   = 1452
	myNoReferencedRowV2 = 1216
)

// IsUniqueViolation reports whether err is a unique-constraint failure from
// the underlying driver. Used to map concurrent duplicate inserts (order
// numbers, one-profile-per-account) onto conflict errors.
func IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myDuplicateEntry
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	return false
}

// IsForeignKeyViolation reports whether err is a referential-integrity
// failure: a write pointing at a missing row, or a delete blocked by a
// RESTRICT reference (products still referenced by order items).
func IsForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myRowIsReferenced, myNoReferencedRow, myNoReferencedRowV2:
			return true
		}
		return false
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgForeignKeyViolation
	}
	return false
}
