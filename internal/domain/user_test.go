package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(999))
	assert.Equal(t, 2, LevelFor(1000))
	assert.Equal(t, 3, LevelFor(2500))
	assert.Equal(t, 0, LevelFor(-1))
}

func TestLevelMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(0, 1_000_000).Draw(t, "a")
		b := rapid.Int64Range(a, 1_000_001).Draw(t, "b")
		if LevelFor(a) > LevelFor(b) {
			t.Fatalf("level(%d)=%d > level(%d)=%d", a, LevelFor(a), b, LevelFor(b))
		}
	})
}

func TestRecordStreakKeepsLongest(t *testing.T) {
	u := &User{CurrentStreak: 7, LongestStreak: 7}
	at := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	u.RecordStreak(1, at)
	assert.Equal(t, 1, u.CurrentStreak)
	assert.Equal(t, 7, u.LongestStreak)
	assert.Equal(t, at, *u.LastLoginDate)

	u.RecordStreak(8, at)
	assert.Equal(t, 8, u.LongestStreak)
}

func TestCloneDoesNotAlias(t *testing.T) {
	email := "a@example.com"
	u := &User{ID: "u1", Email: &email}
	c := u.Clone()
	*c.Email = "b@example.com"
	c.AddPoints(1500)

	assert.Equal(t, "a@example.com", *u.Email)
	assert.Equal(t, int64(0), u.TotalPoints)
	assert.Equal(t, 2, c.Level)
}
