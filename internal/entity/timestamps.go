package entity

import "time"

// Timestamps carries the audit columns shared by every mutable record.
type Timestamps struct {
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Init stamps both columns at creation time.
func (t *Timestamps) Init(now time.Time) {
	now = now.UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch overwrites the modification time. Every update path must call this
// with the current time; values supplied by callers are never trusted.
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}
