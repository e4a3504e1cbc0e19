package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Trigerxx3/cyber/internal/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirestoreStore persists documents in Cloud Firestore. Documents carry the
// same field names as the JSON form of the models.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore builds a client from service account credentials.
func NewFirestoreStore(ctx context.Context, cfg FirestoreConfig, logger *zap.Logger) (*FirestoreStore, error) {
	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		// keys pasted into env files keep their newlines escaped
		"private_key": strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"token_uri":   "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode firestore credentials: %w", err)
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger.Info("Firestore store initialized", zap.String("project_id", cfg.ProjectID))

	return &FirestoreStore{
		client: client,
		logger: logger,
	}, nil
}

func (s *FirestoreStore) Name() string {
	return "firestore"
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) AddFlaggedPost(ctx context.Context, post *models.FlaggedPost) (string, error) {
	data, err := flaggedPostDoc(post)
	if err != nil {
		return "", err
	}

	ref := s.client.Collection(CollectionFlaggedPosts).NewDoc()
	if _, err := ref.Set(ctx, data); err != nil {
		s.logger.Error("Failed to add flagged post", zap.Error(err))
		return "", fmt.Errorf("failed to add flagged post: %w", err)
	}

	post.ID = ref.ID
	post.Timestamp = time.Now().UTC()
	return ref.ID, nil
}

func (s *FirestoreStore) UpsertSuspectedUser(ctx context.Context, user *models.SuspectedUser) error {
	data, err := suspectedUserDoc(user)
	if err != nil {
		return err
	}

	ref := s.client.Collection(CollectionSuspectedUsers).Doc(user.Username)
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		exists, err := docExists(tx, ref)
		if err != nil {
			return err
		}
		return tx.Set(ref, userWrite(data, exists), firestore.MergeAll)
	})
	if err != nil {
		s.logger.Error("Failed to upsert suspected user",
			zap.String("username", user.Username),
			zap.Error(err))
		return fmt.Errorf("failed to upsert suspected user: %w", err)
	}

	user.ID = user.Username
	user.LastSeen = time.Now().UTC()
	return nil
}

func (s *FirestoreStore) RecentFlaggedPosts(ctx context.Context, limit int) ([]models.FlaggedPost, error) {
	query := s.client.Collection(CollectionFlaggedPosts).OrderBy("timestamp", firestore.Desc).Limit(limit)
	return s.flaggedPosts(ctx, query)
}

func (s *FirestoreStore) AllFlaggedPosts(ctx context.Context) ([]models.FlaggedPost, error) {
	return s.flaggedPosts(ctx, s.client.Collection(CollectionFlaggedPosts).OrderBy("timestamp", firestore.Asc))
}

func (s *FirestoreStore) flaggedPosts(ctx context.Context, query firestore.Query) ([]models.FlaggedPost, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		s.logger.Error("Failed to query flagged posts", zap.Error(err))
		return nil, fmt.Errorf("failed to query flagged posts: %w", err)
	}

	posts := make([]models.FlaggedPost, 0, len(docs))
	for _, doc := range docs {
		var post models.FlaggedPost
		if err := fromDoc(doc, &post); err != nil {
			return nil, err
		}
		post.ID = doc.Ref.ID
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *FirestoreStore) RecentSuspectedUsers(ctx context.Context, limit int) ([]models.SuspectedUser, error) {
	docs, err := s.client.Collection(CollectionSuspectedUsers).
		OrderBy("last_seen", firestore.Desc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		s.logger.Error("Failed to query suspected users", zap.Error(err))
		return nil, fmt.Errorf("failed to query suspected users: %w", err)
	}

	users := make([]models.SuspectedUser, 0, len(docs))
	for _, doc := range docs {
		var user models.SuspectedUser
		if err := fromDoc(doc, &user); err != nil {
			return nil, err
		}
		user.ID = doc.Ref.ID
		users = append(users, user)
	}
	return users, nil
}

// SeedBatch writes posts and users in one transaction. Users are read first so
// first_seen is only set on documents that do not exist yet.
func (s *FirestoreStore) SeedBatch(ctx context.Context, posts []models.FlaggedPost, users []models.SuspectedUser) error {
	postDocs := make([]map[string]interface{}, len(posts))
	for i := range posts {
		data, err := flaggedPostDoc(&posts[i])
		if err != nil {
			return err
		}
		postDocs[i] = data
	}

	userDocs := make([]map[string]interface{}, len(users))
	userRefs := make([]*firestore.DocumentRef, len(users))
	for i := range users {
		data, err := suspectedUserDoc(&users[i])
		if err != nil {
			return err
		}
		userDocs[i] = data
		userRefs[i] = s.client.Collection(CollectionSuspectedUsers).Doc(users[i].Username)
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		exists := make([]bool, len(userRefs))
		for i, ref := range userRefs {
			ok, err := docExists(tx, ref)
			if err != nil {
				return err
			}
			exists[i] = ok
		}

		for _, data := range postDocs {
			if err := tx.Create(s.client.Collection(CollectionFlaggedPosts).NewDoc(), data); err != nil {
				return err
			}
		}
		for i, ref := range userRefs {
			if err := tx.Set(ref, userWrite(userDocs[i], exists[i]), firestore.MergeAll); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to commit seed transaction", zap.Error(err))
		return fmt.Errorf("failed to seed store: %w", err)
	}

	s.logger.Info("Seeded store",
		zap.String("store", s.Name()),
		zap.Int("posts", len(posts)),
		zap.Int("users", len(users)))
	return nil
}

// docExists reads ref inside tx. A missing document comes back as a NotFound
// error with a non-existing snapshot.
func docExists(tx *firestore.Transaction, ref *firestore.DocumentRef) (bool, error) {
	snap, err := tx.Get(ref)
	if err != nil && (snap == nil || snap.Exists()) {
		return false, err
	}
	return snap.Exists(), nil
}

// userWrite returns the document to merge for a user. It copies data so a
// retried transaction never sees first_seen left over from an earlier attempt.
func userWrite(data map[string]interface{}, exists bool) map[string]interface{} {
	out := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	if !exists {
		out["first_seen"] = firestore.ServerTimestamp
	}
	return out
}

func flaggedPostDoc(post *models.FlaggedPost) (map[string]interface{}, error) {
	data, err := toDoc(post)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	data["timestamp"] = firestore.ServerTimestamp
	return data, nil
}

// suspectedUserDoc leaves first_seen to the caller and drops a nil email
// hash so a merge keeps the stored one.
func suspectedUserDoc(user *models.SuspectedUser) (map[string]interface{}, error) {
	data, err := toDoc(user)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	delete(data, "first_seen")
	if user.EmailHash == nil {
		delete(data, "email_hash")
	}
	data["last_seen"] = firestore.ServerTimestamp
	return data, nil
}

// toDoc converts a model to a document map through its JSON form.
func toDoc(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func fromDoc(doc *firestore.DocumentSnapshot, out interface{}) error {
	b, err := json.Marshal(doc.Data())
	if err != nil {
		return fmt.Errorf("failed to decode document %s: %w", doc.Ref.ID, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", doc.Ref.ID, err)
	}
	return nil
}
