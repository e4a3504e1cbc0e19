// Package repository is the document store behind the persistence actions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Trigerxx3/cyber/internal/models"

	"go.uber.org/zap"
)

// Collection names, shared by every backend.
const (
	CollectionFlaggedPosts   = "flagged_posts"
	CollectionSuspectedUsers = "suspected_users"
)

// ErrNotConfigured means the selected backend has no credentials. Callers run
// with persistence disabled instead of failing.
var ErrNotConfigured = errors.New("document store not configured")

// Store is the document store capability.
type Store interface {
	// AddFlaggedPost writes a new auto-ID document and fills post.ID and post.Timestamp.
	AddFlaggedPost(ctx context.Context, post *models.FlaggedPost) (string, error)
	// UpsertSuspectedUser merges user into the document keyed by user.Username.
	// A nil EmailHash keeps any previously stored hash. FirstSeen is set only on creation.
	UpsertSuspectedUser(ctx context.Context, user *models.SuspectedUser) error
	// RecentFlaggedPosts and RecentSuspectedUsers return newest first. Posts
	// sharing a timestamp come back in reverse insertion order.
	RecentFlaggedPosts(ctx context.Context, limit int) ([]models.FlaggedPost, error)
	RecentSuspectedUsers(ctx context.Context, limit int) ([]models.SuspectedUser, error)
	// AllFlaggedPosts returns every post in insertion order, oldest first.
	AllFlaggedPosts(ctx context.Context) ([]models.FlaggedPost, error)
	// SeedBatch writes posts and users atomically. Users follow the same
	// merge rules as UpsertSuspectedUser, so reseeding keeps FirstSeen.
	SeedBatch(ctx context.Context, posts []models.FlaggedPost, users []models.SuspectedUser) error
	Name() string
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Type      string          `yaml:"type"` // firestore, sqlite, postgres, memory or none
	Path      string          `yaml:"path"` // sqlite file
	DSN       string          `yaml:"dsn" env:"DATABASE_DSN"`
	Firestore FirestoreConfig `yaml:"firestore"`
}

// FirestoreConfig holds service account credentials.
type FirestoreConfig struct {
	ProjectID   string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	ClientEmail string `yaml:"client_email" env:"FIREBASE_CLIENT_EMAIL"`
	PrivateKey  string `yaml:"private_key" env:"FIREBASE_PRIVATE_KEY"`
}

// Configured reports whether all three credentials are present.
func (c FirestoreConfig) Configured() bool {
	return c.ProjectID != "" && c.ClientEmail != "" && c.PrivateKey != ""
}

// Open constructs the configured backend once. It returns ErrNotConfigured
// when credentials are absent.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return nil, ErrNotConfigured
	case "firestore":
		if !cfg.Firestore.Configured() {
			return nil, fmt.Errorf("%w: FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY are required", ErrNotConfigured)
		}
		store, err := NewFirestoreStore(ctx, cfg.Firestore, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: sqlite path is empty", ErrNotConfigured)
		}
		return NewSQLiteStore(cfg.Path, logger)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("%w: DATABASE_DSN is empty", ErrNotConfigured)
		}
		return NewPostgresStore(cfg.DSN, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
