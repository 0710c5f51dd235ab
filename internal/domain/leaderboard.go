package domain

// LeaderboardEntry is one ranked row of the points leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	TotalPoints   int64  `json:"totalPoints"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"currentStreak"`
}

// UserRank is a user's standing among all users.
type UserRank struct {
	UserID      string `json:"userId"`
	Rank        int    `json:"rank"`
	TotalPoints int64  `json:"totalPoints"`
	TotalUsers  int    `json:"totalUsers"`
}
