package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'acct-1' for key 'vendors.account_id'"}

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert vendor: %w", dup)))

	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1451}))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	for _, number := range []uint16{1451, 1452, 1216} {
		assert.True(t, IsForeignKeyViolation(&mysql.MySQLError{Number: number}), "number %d", number)
	}

	wrapped := fmt.Errorf("delete product: %w", &mysql.MySQLError{Number: 1451})
	assert.True(t, IsForeignKeyViolation(wrapped))

	assert.False(t, IsForeignKeyViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsForeignKeyViolation(errors.New("deadlock found")))
	assert.False(t, IsForeignKeyViolation(nil))
}
