package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Trigerxx3/cyber/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// sqlStore keeps documents as rows with JSON text columns for nested values.
// It serves both sqlite and postgres; queries are written with ? and rebound.
// insertOrder names the column that breaks created_at ties by insertion.
type sqlStore struct {
	db          *sqlx.DB
	name        string
	insertOrder string
	logger      *zap.Logger
	now         func() time.Time
}

type flaggedPostRow struct {
	ID               string         `db:"id"`
	Platform         string         `db:"platform"`
	Channel          sql.NullString `db:"channel"`
	Text             string         `db:"text"`
	DetectedKeywords string         `db:"detected_keywords"`
	MatchedEmojis    string         `db:"matched_emojis"`
	RiskScore        float64        `db:"risk_score"`
	RiskLevel        string         `db:"risk_level"`
	Status           string         `db:"status"`
	CreatedAt        time.Time      `db:"created_at"`
	FullAnalysis     string         `db:"full_analysis"`
}

type suspectedUserRow struct {
	Username       string         `db:"username"`
	Platform       string         `db:"platform"`
	LinkedProfiles string         `db:"linked_profiles"`
	RiskLevel      string         `db:"risk_level"`
	Summary        string         `db:"summary"`
	EmailHash      sql.NullString `db:"email_hash"`
	Analysis       string         `db:"analysis"`
	FirstSeen      time.Time      `db:"first_seen"`
	LastSeen       time.Time      `db:"last_seen"`
}

const (
	insertFlaggedPostQuery = `
		INSERT INTO flagged_posts (
			id, platform, channel, text, detected_keywords, matched_emojis,
			risk_score, risk_level, status, created_at, full_analysis
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	upsertSuspectedUserQuery = `
		INSERT INTO suspected_users (
			username, platform, linked_profiles, risk_level, summary,
			email_hash, analysis, first_seen, last_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			platform = excluded.platform,
			linked_profiles = excluded.linked_profiles,
			risk_level = excluded.risk_level,
			summary = excluded.summary,
			email_hash = COALESCE(excluded.email_hash, suspected_users.email_hash),
			analysis = excluded.analysis,
			last_seen = excluded.last_seen`

	selectFlaggedPostsQuery = `
		SELECT id, platform, channel, text, detected_keywords, matched_emojis,
		       risk_score, risk_level, status, created_at, full_analysis
		FROM flagged_posts`

	selectSuspectedUsersQuery = `
		SELECT username, platform, linked_profiles, risk_level, summary,
		       email_hash, analysis, first_seen, last_seen
		FROM suspected_users
		ORDER BY last_seen DESC, username ASC`
)

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}

func (s *sqlStore) Name() string {
	return s.name
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) AddFlaggedPost(ctx context.Context, post *models.FlaggedPost) (string, error) {
	if err := s.insertFlaggedPost(ctx, s.db, post); err != nil {
		s.logger.Error("Failed to add flagged post", zap.Error(err))
		return "", err
	}
	return post.ID, nil
}

func (s *sqlStore) insertFlaggedPost(ctx context.Context, ex execer, post *models.FlaggedPost) error {
	row, err := toFlaggedPostRow(post)
	if err != nil {
		return err
	}
	row.ID = uuid.NewString()
	row.CreatedAt = s.now().UTC()

	_, err = ex.ExecContext(ctx, ex.Rebind(insertFlaggedPostQuery),
		row.ID,
		row.Platform,
		row.Channel,
		row.Text,
		row.DetectedKeywords,
		row.MatchedEmojis,
		row.RiskScore,
		row.RiskLevel,
		row.Status,
		row.CreatedAt,
		row.FullAnalysis,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flagged post: %w", err)
	}

	post.ID = row.ID
	post.Timestamp = row.CreatedAt
	return nil
}

func (s *sqlStore) UpsertSuspectedUser(ctx context.Context, user *models.SuspectedUser) error {
	if err := s.upsertSuspectedUser(ctx, s.db, user); err != nil {
		s.logger.Error("Failed to upsert suspected user",
			zap.String("username", user.Username),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *sqlStore) upsertSuspectedUser(ctx context.Context, ex execer, user *models.SuspectedUser) error {
	row, err := toSuspectedUserRow(user)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	row.FirstSeen = now
	row.LastSeen = now

	_, err = ex.ExecContext(ctx, ex.Rebind(upsertSuspectedUserQuery),
		row.Username,
		row.Platform,
		row.LinkedProfiles,
		row.RiskLevel,
		row.Summary,
		row.EmailHash,
		row.Analysis,
		row.FirstSeen,
		row.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert suspected user: %w", err)
	}

	user.ID = user.Username
	user.LastSeen = now
	return nil
}

func (s *sqlStore) RecentFlaggedPosts(ctx context.Context, limit int) ([]models.FlaggedPost, error) {
	query := fmt.Sprintf("%s ORDER BY created_at DESC, %s DESC LIMIT ?", selectFlaggedPostsQuery, s.insertOrder)
	return s.selectFlaggedPosts(ctx, query, limit)
}

func (s *sqlStore) AllFlaggedPosts(ctx context.Context) ([]models.FlaggedPost, error) {
	query := fmt.Sprintf("%s ORDER BY created_at ASC, %s ASC", selectFlaggedPostsQuery, s.insertOrder)
	return s.selectFlaggedPosts(ctx, query)
}

func (s *sqlStore) selectFlaggedPosts(ctx context.Context, query string, args ...interface{}) ([]models.FlaggedPost, error) {
	var rows []flaggedPostRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		s.logger.Error("Failed to query flagged posts", zap.Error(err))
		return nil, fmt.Errorf("failed to query flagged posts: %w", err)
	}

	posts := make([]models.FlaggedPost, 0, len(rows))
	for _, row := range rows {
		post, err := row.toModel()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *sqlStore) RecentSuspectedUsers(ctx context.Context, limit int) ([]models.SuspectedUser, error) {
	var rows []suspectedUserRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectSuspectedUsersQuery+" LIMIT ?"), limit); err != nil {
		s.logger.Error("Failed to query suspected users", zap.Error(err))
		return nil, fmt.Errorf("failed to query suspected users: %w", err)
	}

	users := make([]models.SuspectedUser, 0, len(rows))
	for _, row := range rows {
		user, err := row.toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *sqlStore) SeedBatch(ctx context.Context, posts []models.FlaggedPost, users []models.SuspectedUser) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range posts {
		if err := s.insertFlaggedPost(ctx, tx, &posts[i]); err != nil {
			return err
		}
	}
	for i := range users {
		if err := s.upsertSuspectedUser(ctx, tx, &users[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	s.logger.Info("Seeded store",
		zap.String("store", s.name),
		zap.Int("posts", len(posts)),
		zap.Int("users", len(users)))
	return nil
}

func toFlaggedPostRow(post *models.FlaggedPost) (*flaggedPostRow, error) {
	keywords, err := marshalText(nonNil(post.DetectedKeywords))
	if err != nil {
		return nil, err
	}
	emojis, err := marshalText(nonNil(post.MatchedEmojis))
	if err != nil {
		return nil, err
	}
	full, err := marshalText(post.FullAnalysis)
	if err != nil {
		return nil, err
	}

	row := &flaggedPostRow{
		Platform:         post.Platform,
		Text:             post.Text,
		DetectedKeywords: keywords,
		MatchedEmojis:    emojis,
		RiskScore:        post.RiskScore,
		RiskLevel:        post.RiskLevel,
		Status:           post.Status,
		FullAnalysis:     full,
	}
	if post.Channel != nil {
		row.Channel = sql.NullString{String: *post.Channel, Valid: true}
	}
	return row, nil
}

func (r flaggedPostRow) toModel() (models.FlaggedPost, error) {
	post := models.FlaggedPost{
		ID:        r.ID,
		Platform:  r.Platform,
		Text:      r.Text,
		RiskScore: r.RiskScore,
		RiskLevel: r.RiskLevel,
		Status:    r.Status,
		Timestamp: r.CreatedAt,
	}
	if r.Channel.Valid {
		channel := r.Channel.String
		post.Channel = &channel
	}
	if err := json.Unmarshal([]byte(r.DetectedKeywords), &post.DetectedKeywords); err != nil {
		return post, fmt.Errorf("failed to decode detected_keywords of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.MatchedEmojis), &post.MatchedEmojis); err != nil {
		return post, fmt.Errorf("failed to decode matched_emojis of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.FullAnalysis), &post.FullAnalysis); err != nil {
		return post, fmt.Errorf("failed to decode full_analysis of %s: %w", r.ID, err)
	}
	return post, nil
}

func toSuspectedUserRow(user *models.SuspectedUser) (*suspectedUserRow, error) {
	profiles, err := marshalText(nonNil(user.LinkedProfiles))
	if err != nil {
		return nil, err
	}
	analysis, err := marshalText(user.Analysis)
	if err != nil {
		return nil, err
	}

	row := &suspectedUserRow{
		Username:       user.Username,
		Platform:       user.Platform,
		LinkedProfiles: profiles,
		RiskLevel:      user.RiskLevel,
		Summary:        user.Summary,
		Analysis:       analysis,
	}
	if user.EmailHash != nil {
		row.EmailHash = sql.NullString{String: *user.EmailHash, Valid: true}
	}
	return row, nil
}

func (r suspectedUserRow) toModel() (models.SuspectedUser, error) {
	user := models.SuspectedUser{
		ID:        r.Username,
		Username:  r.Username,
		Platform:  r.Platform,
		RiskLevel: r.RiskLevel,
		Summary:   r.Summary,
		FirstSeen: r.FirstSeen,
		LastSeen:  r.LastSeen,
	}
	if r.EmailHash.Valid {
		hash := r.EmailHash.String
		user.EmailHash = &hash
	}
	if err := json.Unmarshal([]byte(r.LinkedProfiles), &user.LinkedProfiles); err != nil {
		return user, fmt.Errorf("failed to decode linked_profiles of %s: %w", r.Username, err)
	}
	if err := json.Unmarshal([]byte(r.Analysis), &user.Analysis); err != nil {
		return user, fmt.Errorf("failed to decode analysis of %s: %w", r.Username, err)
	}
	return user, nil
}

func marshalText(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	return string(b), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
