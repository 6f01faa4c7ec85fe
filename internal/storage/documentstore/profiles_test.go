package documentstore

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestWrapNotFound_TranslatesPgxNoRows(t *testing.T) {
	assert.ErrorIs(t, wrapNotFound(pgx.ErrNoRows), ErrNotFound)
}

func TestWrapNotFound_PassesThroughOtherErrors(t *testing.T) {
	other := errors.New("connection reset")
	assert.Equal(t, other, wrapNotFound(other))
}

func TestNullableTime_ZeroBecomesNil(t *testing.T) {
	assert.Nil(t, nullableTime(time.Time{}))
}

func TestNullableTime_NonZeroPassesThrough(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now, nullableTime(now))
}
