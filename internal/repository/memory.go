package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Trigerxx3/cyber/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. It backs tests and local demos.
type MemoryStore struct {
	mu    sync.RWMutex
	posts []models.FlaggedPost
	users map[string]models.SuspectedUser
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty in-memory store that stamps documents with now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.SuspectedUser),
		now:   now,
	}
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) AddFlaggedPost(ctx context.Context, post *models.FlaggedPost) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFlaggedPost(post)
	return post.ID, nil
}

func (s *MemoryStore) addFlaggedPost(post *models.FlaggedPost) {
	post.ID = uuid.NewString()
	post.Timestamp = s.now().UTC()
	s.posts = append(s.posts, *post)
}

func (s *MemoryStore) UpsertSuspectedUser(ctx context.Context, user *models.SuspectedUser) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertSuspectedUser(user)
	return nil
}

func (s *MemoryStore) upsertSuspectedUser(user *models.SuspectedUser) {
	now := s.now().UTC()
	merged := *user
	merged.ID = user.Username
	merged.FirstSeen = now
	merged.LastSeen = now

	if existing, ok := s.users[user.Username]; ok {
		merged.FirstSeen = existing.FirstSeen
		if merged.EmailHash == nil {
			merged.EmailHash = existing.EmailHash
		}
	}

	s.users[user.Username] = merged
	user.ID = merged.ID
	user.FirstSeen = merged.FirstSeen
	user.LastSeen = merged.LastSeen
	user.EmailHash = merged.EmailHash
}

func (s *MemoryStore) RecentFlaggedPosts(ctx context.Context, limit int) ([]models.FlaggedPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	posts := make([]models.FlaggedPost, len(s.posts))
	// reverse insertion order keeps equal timestamps newest first
	for i, p := range s.posts {
		posts[len(s.posts)-1-i] = p
	}
	s.mu.RUnlock()

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})

	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *MemoryStore) AllFlaggedPosts(ctx context.Context) ([]models.FlaggedPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	posts := make([]models.FlaggedPost, len(s.posts))
	copy(posts, s.posts)
	s.mu.RUnlock()

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.Before(posts[j].Timestamp)
	})
	return posts, nil
}

func (s *MemoryStore) RecentSuspectedUsers(ctx context.Context, limit int) ([]models.SuspectedUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	users := make([]models.SuspectedUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if !users[i].LastSeen.Equal(users[j].LastSeen) {
			return users[i].LastSeen.After(users[j].LastSeen)
		}
		return users[i].Username < users[j].Username
	})

	if limit >= 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *MemoryStore) SeedBatch(ctx context.Context, posts []models.FlaggedPost, users []models.SuspectedUser) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range posts {
		s.addFlaggedPost(&posts[i])
	}
	for i := range users {
		s.upsertSuspectedUser(&users[i])
	}
	return nil
}
