package groupoffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExpirer struct {
	expired int64
	err     error
	calls   int
	lastNow time.Time
}

func (s *stubExpirer) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	s.calls++
	s.lastNow = now
	return s.expired, s.err
}

func TestSweepMarksExpiredOffers(t *testing.T) {
	expirer := &stubExpirer{expired: 3}
	run := sweep(expirer, zap.NewNop())

	require.NoError(t, run(context.Background()))
	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, time.UTC, expirer.lastNow.Location())
}

func TestSweepPropagatesErrors(t *testing.T) {
	want := errors.New("connection reset")
	expirer := &stubExpirer{err: want}
	run := sweep(expirer, zap.NewNop())

	assert.ErrorIs(t, run(context.Background()), want)
}
