package domain

import "time"

const (
	CheckInBasePoints  = 10
	CheckInStreakBonus = 2
)

// CheckIn is one daily check-in. At most one exists per user per calendar day.
type CheckIn struct {
	ID                   string    `db:"id" json:"id"`
	UserID               string    `db:"user_id" json:"userId"`
	CheckInDate          time.Time `db:"check_in_date" json:"checkInDate"`
	TransactionSignature string    `db:"transaction_signature" json:"transactionSignature"`
	PointsEarned         int64     `db:"points_earned" json:"pointsEarned"`
	StreakDay            int       `db:"streak_day" json:"streakDay"`
}

// CheckInReward is the points paid for a check-in on the given streak day.
func CheckInReward(streakDay int) int64 {
	return CheckInBasePoints + int64(streakDay)*CheckInStreakBonus
}

// DayBounds returns the half-open interval [start, end) of the calendar day
// containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	end := time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc)
	return start, end
}

// DaysBetween counts calendar days from a to b as seen in loc.
// It is negative when b falls on an earlier day than a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// NextStreak computes the streak day for a check-in made at now.
//
// A check-in exactly one calendar day after the last login continues the
// streak, a longer gap resets it to 1, and a first check-in starts at 1.
// A same-day (or clock-skewed) last login keeps the current streak.
func NextStreak(lastLogin *time.Time, current int, now time.Time, loc *time.Location) int {
	if lastLogin == nil {
		return 1
	}
	gap := DaysBetween(*lastLogin, now, loc)
	switch {
	case gap == 1:
		return current + 1
	case gap > 1:
		return 1
	}
	if current < 1 {
		return 1
	}
	return current
}
