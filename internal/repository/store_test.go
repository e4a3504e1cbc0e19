package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Trigerxx3/cyber/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	cur  time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), step: time.Minute}
}

// newFrozenClock returns the same instant on every reading.
func newFrozenClock() *stepClock {
	return &stepClock{cur: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(c.step)
	return c.cur
}

func strPtr(s string) *string { return &s }

func newPost(text string, score float64) *models.FlaggedPost {
	return &models.FlaggedPost{
		Platform:         "Telegram",
		Channel:          strPtr("@chan"),
		Text:             text,
		DetectedKeywords: []string{"MDMA"},
		MatchedEmojis:    []string{"💊"},
		RiskScore:        score,
		RiskLevel:        "High",
		Status:           models.StatusFlagged,
		FullAnalysis: models.FullAnalysis{
			Analysis: models.AnalysisResult{
				Platform:        models.PlatformTelegram,
				Content:         text,
				Indicators:      []string{"MDMA"},
				RiskLevel:       models.RiskHigh,
				Reasoning:       "r",
				MatchedKeywords: []string{"MDMA"},
				MatchedEmojis:   []string{"💊"},
			},
			Risk: models.RiskAssessment{RiskScore: score, RiskLevel: "High", Indicators: []string{"MDMA"}},
		},
	}
}

func newUser(username string, emailHash *string) *models.SuspectedUser {
	return &models.SuspectedUser{
		Username:       username,
		Platform:       "Telegram",
		LinkedProfiles: []string{"Instagram:" + username},
		RiskLevel:      "High",
		Summary:        "summary of " + username,
		EmailHash:      emailHash,
		Analysis: models.UserProfile{
			Username:       username,
			Platform:       models.PlatformTelegram,
			LinkedProfiles: []string{"Instagram:" + username},
			Email:          emailHash,
			RiskLevel:      models.RiskHigh,
			Summary:        "summary of " + username,
		},
	}
}

// backends returns each locally runnable store, all driven by the same clock.
func backends() map[string]func(t *testing.T, clock *stepClock) Store {
	return map[string]func(t *testing.T, clock *stepClock) Store{
		"memory": func(t *testing.T, clock *stepClock) Store {
			return NewMemoryStoreWithClock(clock.Now)
		},
		"sqlite": func(t *testing.T, clock *stepClock) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cyber.db"), zap.NewNop())
			require.NoError(t, err)
			store.(*sqlStore).now = clock.Now
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

func TestStore_FlaggedPosts(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, newStepClock())

			first := newPost("first", 70)
			id, err := store.AddFlaggedPost(ctx, first)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			assert.Equal(t, id, first.ID)
			assert.False(t, first.Timestamp.IsZero())

			second := newPost("second", 90)
			second.Channel = nil
			_, err = store.AddFlaggedPost(ctx, second)
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, second.ID)

			recent, err := store.RecentFlaggedPosts(ctx, 10)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, "second", recent[0].Text)
			assert.Nil(t, recent[0].Channel)
			assert.Equal(t, "first", recent[1].Text)
			require.NotNil(t, recent[1].Channel)
			assert.Equal(t, "@chan", *recent[1].Channel)
			assert.Equal(t, []string{"MDMA"}, recent[1].DetectedKeywords)
			assert.Equal(t, []string{"💊"}, recent[1].MatchedEmojis)
			assert.Equal(t, 70.0, recent[1].RiskScore)
			assert.Equal(t, models.StatusFlagged, recent[1].Status)
			assert.Equal(t, models.RiskHigh, recent[1].FullAnalysis.Analysis.RiskLevel)
			assert.Equal(t, 70.0, recent[1].FullAnalysis.Risk.RiskScore)

			limited, err := store.RecentFlaggedPosts(ctx, 1)
			require.NoError(t, err)
			require.Len(t, limited, 1)
			assert.Equal(t, "second", limited[0].Text)

			all, err := store.AllFlaggedPosts(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "first", all[0].Text)
			assert.Equal(t, "second", all[1].Text)
		})
	}
}

func TestStore_UpsertSuspectedUser(t *testing.T) {
	hash := "0d2b44b5cd9bd5a8b7a9e07f4b6b3d4e5b1f4f40c85c1d5b2e8c2d0a9f6e3b71"
	otherHash := "1111111111111111111111111111111111111111111111111111111111111111"

	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, newStepClock())

			require.NoError(t, store.UpsertSuspectedUser(ctx, newUser("coke_dealer_nyc", &hash)))

			users, err := store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			require.Len(t, users, 1)
			firstSeen := users[0].FirstSeen

			// a second lookup without an email keeps the stored hash
			updated := newUser("coke_dealer_nyc", nil)
			updated.RiskLevel = "Critical"
			require.NoError(t, store.UpsertSuspectedUser(ctx, updated))

			users, err = store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			require.Len(t, users, 1)
			got := users[0]
			assert.Equal(t, "coke_dealer_nyc", got.ID)
			assert.Equal(t, "coke_dealer_nyc", got.Username)
			assert.Equal(t, "Critical", got.RiskLevel)
			require.NotNil(t, got.EmailHash)
			assert.Equal(t, hash, *got.EmailHash)
			assert.True(t, got.FirstSeen.Equal(firstSeen), "first_seen is kept")
			assert.True(t, got.LastSeen.After(got.FirstSeen))
			assert.Equal(t, []string{"Instagram:coke_dealer_nyc"}, got.LinkedProfiles)

			require.NoError(t, store.UpsertSuspectedUser(ctx, newUser("coke_dealer_nyc", &otherHash)))
			users, err = store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			require.Len(t, users, 1)
			assert.Equal(t, otherHash, *users[0].EmailHash)
		})
	}
}

func TestStore_RecentSuspectedUsersOrder(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, newStepClock())

			require.NoError(t, store.UpsertSuspectedUser(ctx, newUser("alpha", nil)))
			require.NoError(t, store.UpsertSuspectedUser(ctx, newUser("bravo", nil)))
			require.NoError(t, store.UpsertSuspectedUser(ctx, newUser("alpha", nil)))

			users, err := store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			require.Len(t, users, 2)
			assert.Equal(t, "alpha", users[0].Username)
			assert.Equal(t, "bravo", users[1].Username)
			assert.Nil(t, users[1].EmailHash)

			users, err = store.RecentSuspectedUsers(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, users, 1)
		})
	}
}

func TestStore_SeedBatch(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, newStepClock())

			posts := []models.FlaggedPost{*newPost("a", 60), *newPost("b", 80)}
			users := []models.SuspectedUser{*newUser("alpha", nil), *newUser("bravo", nil)}
			require.NoError(t, store.SeedBatch(ctx, posts, users))

			all, err := store.AllFlaggedPosts(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
			for _, p := range posts {
				assert.NotEmpty(t, p.ID)
			}

			got, err := store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, got, 2)
		})
	}
}

func TestStore_SameTimestampKeepsInsertionOrder(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, newFrozenClock())

			for _, text := range []string{"first", "second", "third"} {
				_, err := store.AddFlaggedPost(ctx, newPost(text, 70))
				require.NoError(t, err)
			}

			all, err := store.AllFlaggedPosts(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "first", all[0].Text)
			assert.Equal(t, "second", all[1].Text)
			assert.Equal(t, "third", all[2].Text)

			recent, err := store.RecentFlaggedPosts(ctx, 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, "third", recent[0].Text)
			assert.Equal(t, "second", recent[1].Text)
		})
	}
}

func TestStore_SeedKeepsFirstSeen(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, newStepClock())

			require.NoError(t, store.UpsertSuspectedUser(ctx, newUser("alpha", nil)))
			users, err := store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			require.Len(t, users, 1)
			firstSeen := users[0].FirstSeen

			seed := []models.SuspectedUser{*newUser("alpha", nil), *newUser("bravo", nil)}
			require.NoError(t, store.SeedBatch(ctx, nil, seed))
			require.NoError(t, store.SeedBatch(ctx, nil, seed))

			users, err = store.RecentSuspectedUsers(ctx, 10)
			require.NoError(t, err)
			require.Len(t, users, 2)
			for _, u := range users {
				if u.Username == "alpha" {
					assert.True(t, u.FirstSeen.Equal(firstSeen), "reseeding keeps first_seen")
					assert.True(t, u.LastSeen.After(firstSeen))
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	_, err := Open(ctx, Config{}, logger)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, Config{Type: "none"}, logger)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, Config{Type: "firestore", Firestore: FirestoreConfig{ProjectID: "p"}}, logger)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, Config{Type: "postgres"}, logger)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, Config{Type: "sqlite"}, logger)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, Config{Type: "mongo"}, logger)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)

	store, err := Open(ctx, Config{Type: "Memory"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "memory", store.Name())

	store, err = Open(ctx, Config{Type: "sqlite", Path: filepath.Join(t.TempDir(), "open.db")}, logger)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", store.Name())
	require.NoError(t, store.Close())
}

func TestFirestoreConfig_Configured(t *testing.T) {
	assert.False(t, FirestoreConfig{}.Configured())
	assert.False(t, FirestoreConfig{ProjectID: "p", ClientEmail: "e"}.Configured())
	assert.True(t, FirestoreConfig{ProjectID: "p", ClientEmail: "e", PrivateKey: "k"}.Configured())
}

func TestSuspectedUserDoc(t *testing.T) {
	data, err := suspectedUserDoc(newUser("alpha", nil))
	require.NoError(t, err)
	assert.NotContains(t, data, "id")
	assert.NotContains(t, data, "first_seen")
	assert.NotContains(t, data, "email_hash")
	assert.Equal(t, "alpha", data["username"])
	assert.Contains(t, data, "last_seen")

	hash := "abc"
	data, err = suspectedUserDoc(newUser("alpha", &hash))
	require.NoError(t, err)
	assert.Equal(t, "abc", data["email_hash"])
}

func TestFlaggedPostDoc(t *testing.T) {
	data, err := flaggedPostDoc(newPost("x", 50))
	require.NoError(t, err)
	assert.NotContains(t, data, "id")
	assert.Equal(t, "x", data["text"])
	assert.Equal(t, 50.0, data["riskScore"])
	assert.Contains(t, data, "full_analysis")
}

func TestUserWrite(t *testing.T) {
	data, err := suspectedUserDoc(newUser("alpha", nil))
	require.NoError(t, err)

	created := userWrite(data, false)
	assert.Equal(t, firestore.ServerTimestamp, created["first_seen"])
	assert.NotContains(t, data, "first_seen", "input map is left untouched")

	// a retry that finds the document must not carry first_seen from the first attempt
	updated := userWrite(data, true)
	assert.NotContains(t, updated, "first_seen")
	assert.Equal(t, "alpha", updated["username"])
	assert.Contains(t, updated, "last_seen")
}
