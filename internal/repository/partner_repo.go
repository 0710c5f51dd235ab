package repository

import (
	"context"
	"time"

	"carvfi/internal/domain"

	"github.com/google/uuid"
)

func (r *queries) ListPartnerProjects(ctx context.Context, activeOnly bool) ([]*domain.PartnerProject, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, hashtags, points_per_tweet, active, description, logo_url
		 FROM partner_projects
		 WHERE NOT $1::bool OR active
		 ORDER BY name, id`,
		activeOnly,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.PartnerProject
	for rows.Next() {
		var p domain.PartnerProject
		if err := rows.Scan(&p.ID, &p.Name, &p.Hashtags, &p.PointsPerTweet, &p.Active, &p.Description, &p.LogoURL); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

func (r *queries) CreatePartnerProject(ctx context.Context, p *domain.PartnerProject) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO partner_projects (id, name, hashtags, points_per_tweet, active, description, logo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Hashtags, p.PointsPerTweet, p.Active, p.Description, p.LogoURL,
	)
	return mapErr(err)
}

func (r *queries) ListTwitterActivities(ctx context.Context, userID string, limit int) ([]*domain.TwitterActivity, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, user_id, tweet_id, tweet_text, activity_type, hashtags, partner_project,
		        points_earned, verified, created_at
		 FROM twitter_activities
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.TwitterActivity
	for rows.Next() {
		var a domain.TwitterActivity
		if err := rows.Scan(&a.ID, &a.UserID, &a.TweetID, &a.TweetText, &a.ActivityType, &a.Hashtags,
			&a.PartnerProject, &a.PointsEarned, &a.Verified, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (r *queries) TwitterActivityExists(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM twitter_activities WHERE tweet_id = $1)`, tweetID,
	).Scan(&exists)
	return exists, err
}

func (r *queries) CreateTwitterActivity(ctx context.Context, a *domain.TwitterActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Hashtags == nil {
		a.Hashtags = []string{}
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO twitter_activities (id, user_id, tweet_id, tweet_text, activity_type, hashtags,
			partner_project, points_earned, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.TweetID, a.TweetText, a.ActivityType, a.Hashtags,
		a.PartnerProject, a.PointsEarned, a.Verified, a.CreatedAt,
	)
	return mapErr(err)
}
