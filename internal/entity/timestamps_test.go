package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampsInit(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, loc)

	var ts Timestamps
	ts.Init(now)

	assert.Equal(t, now.UTC(), ts.CreatedAt)
	assert.Equal(t, now.UTC(), ts.UpdatedAt)
	assert.Equal(t, time.UTC, ts.CreatedAt.Location())
}

func TestTimestampsTouchOverwritesCallerValue(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var ts Timestamps
	ts.Init(created)

	// A caller-supplied modification time must not survive.
	ts.UpdatedAt = created.Add(-time.Hour)

	later := created.Add(time.Hour)
	ts.Touch(later)

	assert.Equal(t, created, ts.CreatedAt)
	assert.Equal(t, later, ts.UpdatedAt)
}
