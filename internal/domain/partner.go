package domain

import (
	"strings"
	"time"
)

// Twitter activity types.
const (
	ActivityHashtag   = "hashtag"
	ActivityMention   = "mention"
	ActivityPromotion = "promotion"
)

// DefaultPointsPerTweet is used when a partner project does not set its own reward.
const DefaultPointsPerTweet = 50

type PartnerProject struct {
	ID             string   `db:"id" json:"id"`
	Name           string   `db:"name" json:"name"`
	Hashtags       []string `db:"hashtags" json:"hashtags"`
	PointsPerTweet int64    `db:"points_per_tweet" json:"pointsPerTweet"`
	Active         bool     `db:"active" json:"active"`
	Description    *string  `db:"description" json:"description"`
	LogoURL        *string  `db:"logo_url" json:"logoUrl"`
}

// Matches reports whether any of the given hashtags belongs to the project.
// Comparison ignores case and a leading '#'.
func (p *PartnerProject) Matches(hashtags []string) bool {
	for _, want := range p.Hashtags {
		w := normalizeHashtag(want)
		for _, got := range hashtags {
			if normalizeHashtag(got) == w {
				return true
			}
		}
	}
	return false
}

func normalizeHashtag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// DefaultPartnerProjects is the seed campaign list.
func DefaultPartnerProjects() []PartnerProject {
	carv := "Promote the CARV platform and its SVM network"
	dao := "Share content about DAO platforms"
	return []PartnerProject{
		{
			Name:           "CARV Protocol",
			Hashtags:       []string{"#CARVProtocol", "#CARVSVM", "#Web3"},
			PointsPerTweet: 50,
			Active:         true,
			Description:    &carv,
		},
		{
			Name:           "Crypto DAO",
			Hashtags:       []string{"#CryptoDAO", "#Blockchain", "#DeFi"},
			PointsPerTweet: 40,
			Active:         true,
			Description:    &dao,
		},
	}
}

type TwitterActivity struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	TweetID        string    `db:"tweet_id" json:"tweetId"`
	TweetText      *string   `db:"tweet_text" json:"tweetText"`
	ActivityType   string    `db:"activity_type" json:"activityType"`
	Hashtags       []string  `db:"hashtags" json:"hashtags"`
	PartnerProject *string   `db:"partner_project" json:"partnerProject"`
	PointsEarned   int64     `db:"points_earned" json:"pointsEarned"`
	Verified       bool      `db:"verified" json:"verified"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
