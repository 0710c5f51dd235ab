package domain

import "time"

// DefaultUsernamePrefix marks usernames generated on first wallet contact.
const DefaultUsernamePrefix = "carver_"

// PointsPerLevel is the number of points needed to advance one level.
const PointsPerLevel = 1000

type User struct {
	ID              string     `db:"id" json:"id"`
	WalletAddress   string     `db:"wallet_address" json:"walletAddress"`
	Username        string     `db:"username" json:"username"`
	Email           *string    `db:"email" json:"email"`
	AvatarURL       *string    `db:"avatar_url" json:"avatarUrl"`
	TwitterHandle   *string    `db:"twitter_handle" json:"twitterHandle"`
	TwitterID       *string    `db:"twitter_id" json:"twitterId"`
	TotalPoints     int64      `db:"total_points" json:"totalPoints"`
	CurrentStreak   int        `db:"current_streak" json:"currentStreak"`
	LongestStreak   int        `db:"longest_streak" json:"longestStreak"`
	LastLoginDate   *time.Time `db:"last_login_date" json:"lastLoginDate"`
	Level           int        `db:"level" json:"level"`
	UsernameChanged bool       `db:"username_changed" json:"usernameChanged"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

// LevelFor returns floor(totalPoints/PointsPerLevel)+1.
func LevelFor(totalPoints int64) int {
	q := totalPoints / PointsPerLevel
	if totalPoints < 0 && totalPoints%PointsPerLevel != 0 {
		q--
	}
	return int(q) + 1
}

// AddPoints applies a signed delta and recomputes the level.
func (u *User) AddPoints(delta int64) {
	u.TotalPoints += delta
	u.Level = LevelFor(u.TotalPoints)
}

// RecordStreak stores the streak reached by a check-in at the given time.
func (u *User) RecordStreak(streak int, at time.Time) {
	u.CurrentStreak = streak
	if streak > u.LongestStreak {
		u.LongestStreak = streak
	}
	t := at
	u.LastLoginDate = &t
}

// Clone returns a copy that shares no pointers with u.
func (u *User) Clone() *User {
	c := *u
	c.Email = cloneString(u.Email)
	c.AvatarURL = cloneString(u.AvatarURL)
	c.TwitterHandle = cloneString(u.TwitterHandle)
	c.TwitterID = cloneString(u.TwitterID)
	if u.LastLoginDate != nil {
		t := *u.LastLoginDate
		c.LastLoginDate = &t
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
