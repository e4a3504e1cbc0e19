// Package service holds the actions behind the dashboard: the analysis
// pipelines and the persistence actions. Actions never return errors; every
// failure is logged and turned into a models.ActionResult.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Trigerxx3/cyber/internal/crypto"
	"github.com/Trigerxx3/cyber/internal/dashboard"
	"github.com/Trigerxx3/cyber/internal/flows"
	"github.com/Trigerxx3/cyber/internal/models"
	"github.com/Trigerxx3/cyber/internal/repository"

	"go.uber.org/zap"
)

// RecentLimit caps the posts and users shown on the dashboard.
const RecentLimit = 10

// Result messages shown to the user.
const (
	MsgPersistenceDisabled = "Document store is not configured, skipping save. Set the store credentials to enable persistence."
	MsgLowRisk             = "Low risk, not saving."
	MsgAnalysisSaved       = "Analysis saved successfully."
	MsgUserSaved           = "User profile saved successfully."
	MsgSampleData          = "Document store is not configured, showing sample data."
	MsgDashboardLoaded     = "Dashboard data loaded."
	MsgSeeded              = "Database seeded successfully."
	MsgSeedDisabled        = "Document store is not configured, cannot seed the database."
	MsgUnexpected          = "An unexpected error occurred. Please try again later."
)

// Flows is the set of AI flows the actions chain together.
type Flows interface {
	AnalyzeContent(ctx context.Context, in flows.ContentInput) (*models.AnalysisResult, error)
	AssessRisk(ctx context.Context, contentAnalysis string) (*models.RiskAssessment, error)
	GenerateReport(ctx context.Context, contentAnalysis, riskAssessment string) (*models.Report, error)
	IdentifyUser(ctx context.Context, in flows.UserInput) (*models.UserProfile, error)
}

// Actions wires flows to an optional document store.
type Actions struct {
	flows  Flows
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewActions creates the actions. A nil store disables persistence for the
// lifetime of the process.
func NewActions(f Flows, store repository.Store, logger *zap.Logger) *Actions {
	return &Actions{
		flows:  f,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// PersistenceEnabled reports whether a document store was injected.
func (a *Actions) PersistenceEnabled() bool {
	return a.store != nil
}

// StoreName names the injected backend, or returns "" when persistence is disabled.
func (a *Actions) StoreName() string {
	if a.store == nil {
		return ""
	}
	return a.store.Name()
}

// AnalysisRecord is everything needed to persist one content analysis.
type AnalysisRecord struct {
	Platform models.Platform
	Channel  string
	Content  string
	Analysis *models.AnalysisResult
	Risk     *models.RiskAssessment
}

// SaveAnalysis writes one flagged post unless the risk is Low or persistence is disabled.
func (a *Actions) SaveAnalysis(ctx context.Context, rec AnalysisRecord) models.ActionResult {
	if a.store == nil {
		a.logger.Warn(MsgPersistenceDisabled)
		saveSkipped.WithLabelValues("disabled").Inc()
		return models.ActionResult{Success: true, Message: MsgPersistenceDisabled}
	}

	if rec.Analysis == nil || rec.Risk == nil {
		actionFailures.WithLabelValues("save_analysis").Inc()
		return models.ActionResult{Message: "Failed to save analysis: analysis and risk assessment are required"}
	}

	if rec.Risk.RiskLevel == string(models.RiskLow) {
		a.logger.Info("Low risk, not saving", zap.String("platform", string(rec.Platform)))
		saveSkipped.WithLabelValues("low_risk").Inc()
		return models.ActionResult{Success: true, Message: MsgLowRisk}
	}

	post := &models.FlaggedPost{
		Platform:         string(rec.Platform),
		Text:             rec.Content,
		DetectedKeywords: rec.Risk.Indicators,
		MatchedEmojis:    rec.Analysis.MatchedEmojis,
		RiskScore:        rec.Risk.RiskScore,
		RiskLevel:        rec.Risk.RiskLevel,
		Status:           models.StatusFlagged,
		FullAnalysis: models.FullAnalysis{
			Analysis: *rec.Analysis,
			Risk:     *rec.Risk,
		},
	}
	if rec.Channel != "" {
		channel := rec.Channel
		post.Channel = &channel
	}

	id, err := a.store.AddFlaggedPost(ctx, post)
	if err != nil {
		a.logger.Error("Error saving analysis", zap.String("store", a.store.Name()), zap.Error(err))
		actionFailures.WithLabelValues("save_analysis").Inc()
		return models.ActionResult{Message: "Failed to save analysis: " + err.Error()}
	}

	documentsPersisted.WithLabelValues(repository.CollectionFlaggedPosts).Inc()
	a.logger.Info("Analysis saved",
		zap.String("doc_id", id),
		zap.String("risk_level", post.RiskLevel))

	return models.ActionResult{Success: true, Message: MsgAnalysisSaved, DocID: id}
}

// UserRecord is one investigation result to persist.
type UserRecord struct {
	Username string
	Platform models.Platform
	Profile  *models.UserProfile
}

// SaveSuspectedUser upserts the user document keyed by username. The email is
// replaced by its SHA-256 digest everywhere it would be stored.
func (a *Actions) SaveSuspectedUser(ctx context.Context, rec UserRecord) models.ActionResult {
	if a.store == nil {
		a.logger.Warn(MsgPersistenceDisabled)
		saveSkipped.WithLabelValues("disabled").Inc()
		return models.ActionResult{Success: true, Message: MsgPersistenceDisabled}
	}

	if rec.Profile == nil || rec.Username == "" {
		actionFailures.WithLabelValues("save_user").Inc()
		return models.ActionResult{Message: "Failed to save user profile: username and profile are required"}
	}

	user := suspectedUser(rec)
	if err := a.store.UpsertSuspectedUser(ctx, user); err != nil {
		a.logger.Error("Error saving suspected user",
			zap.String("store", a.store.Name()),
			zap.String("username", rec.Username),
			zap.Error(err))
		actionFailures.WithLabelValues("save_user").Inc()
		return models.ActionResult{Message: "Failed to save user profile: " + err.Error()}
	}

	documentsPersisted.WithLabelValues(repository.CollectionSuspectedUsers).Inc()
	a.logger.Info("Suspected user saved",
		zap.String("username", rec.Username),
		zap.Bool("email_hashed", user.EmailHash != nil))

	return models.ActionResult{Success: true, Message: MsgUserSaved, DocID: rec.Username}
}

func suspectedUser(rec UserRecord) *models.SuspectedUser {
	emailHash := crypto.HashEmailPtr(rec.Profile.Email)

	analysis := *rec.Profile
	analysis.Username = rec.Username
	analysis.Platform = rec.Platform
	analysis.Email = emailHash

	return &models.SuspectedUser{
		ID:             rec.Username,
		Username:       rec.Username,
		Platform:       string(rec.Platform),
		LinkedProfiles: rec.Profile.LinkedProfiles,
		RiskLevel:      string(rec.Profile.RiskLevel),
		Summary:        rec.Profile.Summary,
		EmailHash:      emailHash,
		Analysis:       analysis,
	}
}

// GetDashboardData loads the recent posts and users and computes the stats
// over every flagged post. Without a store it returns the sample data set.
func (a *Actions) GetDashboardData(ctx context.Context) (*models.DashboardData, models.ActionResult) {
	if a.store == nil {
		return dashboard.SampleData(a.now().UTC()), models.ActionResult{Success: true, Message: MsgSampleData}
	}

	fail := func(err error) (*models.DashboardData, models.ActionResult) {
		a.logger.Error("Failed to fetch dashboard data", zap.String("store", a.store.Name()), zap.Error(err))
		actionFailures.WithLabelValues("dashboard").Inc()
		return nil, models.ActionResult{Message: "Could not fetch dashboard data: " + err.Error()}
	}

	posts, err := a.store.RecentFlaggedPosts(ctx, RecentLimit)
	if err != nil {
		return fail(err)
	}
	users, err := a.store.RecentSuspectedUsers(ctx, RecentLimit)
	if err != nil {
		return fail(err)
	}
	all, err := a.store.AllFlaggedPosts(ctx)
	if err != nil {
		return fail(err)
	}

	if posts == nil {
		posts = []models.FlaggedPost{}
	}
	if users == nil {
		users = []models.SuspectedUser{}
	}

	return &models.DashboardData{
		FlaggedPosts:   posts,
		SuspectedUsers: users,
		Stats:          dashboard.ComputeStats(all),
	}, models.ActionResult{Success: true, Message: MsgDashboardLoaded}
}

// SeedDatabase batch-writes the sample posts and users.
func (a *Actions) SeedDatabase(ctx context.Context) models.ActionResult {
	if a.store == nil {
		a.logger.Warn(MsgSeedDisabled)
		return models.ActionResult{Message: MsgSeedDisabled}
	}

	posts := dashboard.SamplePosts()
	sample := dashboard.SampleUsers()
	users := make([]models.SuspectedUser, len(sample))
	for i, u := range sample {
		users[i] = *suspectedUser(UserRecord{
			Username: u.Username,
			Platform: models.Platform(u.Platform),
			Profile:  &u.Analysis,
		})
	}

	if err := a.store.SeedBatch(ctx, posts, users); err != nil {
		a.logger.Error("Failed to seed database", zap.String("store", a.store.Name()), zap.Error(err))
		actionFailures.WithLabelValues("seed").Inc()
		return models.ActionResult{Message: "Failed to seed database: " + err.Error()}
	}

	documentsPersisted.WithLabelValues(repository.CollectionFlaggedPosts).Add(float64(len(posts)))
	documentsPersisted.WithLabelValues(repository.CollectionSuspectedUsers).Add(float64(len(users)))

	return models.ActionResult{Success: true, Message: MsgSeeded}
}

// marshalForPrompt renders a flow output the way the next flow receives it.
func marshalForPrompt(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
