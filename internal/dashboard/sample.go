package dashboard

import (
	"fmt"
	"time"

	"github.com/Trigerxx3/cyber/internal/models"
)

// SamplePosts is the fixed demo set of flagged posts.
func SamplePosts() []models.FlaggedPost {
	posts := []models.FlaggedPost{
		{
			Platform:         "Telegram",
			Channel:          strPtr("@thegoodstuff"),
			Text:             "🔥 New batch just dropped! Top quality MDMA pills (ecstasy) and pure crystal meth available now. Discreet shipping worldwide. DM for prices and menu. 💊🚀 #mdma #crystal #deals",
			DetectedKeywords: []string{"MDMA", "pills", "crystal meth"},
			MatchedEmojis:    []string{"🔥", "💊", "🚀"},
			RiskScore:        95,
			RiskLevel:        "High",
		},
		{
			Platform:         "Instagram",
			Channel:          strPtr("partysupplies_uk"),
			Text:             "Weekend forecast: 100% chance of rolling. Hmu if you need party favours for the festival. 🍬😉 Special powders ready. #weekendvibes #partytime",
			DetectedKeywords: []string{"rolling", "party favours", "powders"},
			MatchedEmojis:    []string{"🍬", "😉"},
			RiskScore:        75,
			RiskLevel:        "High",
		},
		{
			Platform:         "WhatsApp",
			Channel:          strPtr("Secret Rave Group"),
			Text:             "Got some fire molly for this weekend. Hit me up before it's all gone!",
			DetectedKeywords: []string{"molly"},
			MatchedEmojis:    []string{},
			RiskScore:        80,
			RiskLevel:        "High",
		},
		{
			Platform:         "Telegram",
			Channel:          strPtr("@chemcentral"),
			Text:             "Testing out some new chemicals. Looking for psychonauts to give feedback. Message for details. #researchchem",
			DetectedKeywords: []string{"chemicals", "psychonauts"},
			MatchedEmojis:    []string{},
			RiskScore:        65,
			RiskLevel:        "Medium",
		},
	}

	for i := range posts {
		p := &posts[i]
		p.Status = models.StatusFlagged
		p.FullAnalysis = models.FullAnalysis{
			Analysis: models.AnalysisResult{
				Platform:        models.Platform(p.Platform),
				Content:         p.Text,
				Indicators:      p.DetectedKeywords,
				RiskLevel:       models.RiskLevel(p.RiskLevel),
				Reasoning:       "Sample data.",
				MatchedKeywords: p.DetectedKeywords,
				MatchedEmojis:   p.MatchedEmojis,
			},
			Risk: models.RiskAssessment{
				RiskScore:  p.RiskScore,
				RiskLevel:  p.RiskLevel,
				Indicators: p.DetectedKeywords,
			},
		}
	}
	return posts
}

// SampleUsers is the fixed demo set of suspected users.
func SampleUsers() []models.SuspectedUser {
	users := []models.SuspectedUser{
		{
			Username:       "coke_dealer_nyc",
			Platform:       "Telegram",
			LinkedProfiles: []string{"Instagram:nycsnowman", "WhatsApp:coke_dealer_nyc"},
			RiskLevel:      "Critical",
			Summary:        "Sample data.",
		},
		{
			Username:       "rave_dave23",
			Platform:       "Instagram",
			LinkedProfiles: []string{},
			RiskLevel:      "Medium",
			Summary:        "Sample data.",
		},
	}

	for i := range users {
		u := &users[i]
		u.ID = u.Username
		u.Analysis = models.UserProfile{
			Username:       u.Username,
			Platform:       models.Platform(u.Platform),
			LinkedProfiles: u.LinkedProfiles,
			RiskLevel:      models.RiskLevel(u.RiskLevel),
			Summary:        u.Summary,
		}
	}
	return users
}

// SampleData builds a demo dashboard for runs without a document store.
func SampleData(now time.Time) *models.DashboardData {
	posts := SamplePosts()
	for i := range posts {
		posts[i].ID = fmt.Sprintf("sample-post-%d", i)
		posts[i].Timestamp = now
	}

	users := SampleUsers()
	for i := range users {
		users[i].ID = fmt.Sprintf("sample-user-%d", i)
		users[i].FirstSeen = now
		users[i].LastSeen = now
	}

	return &models.DashboardData{
		FlaggedPosts:   posts,
		SuspectedUsers: users,
		Stats:          ComputeStats(posts),
		Demo:           true,
	}
}

func strPtr(s string) *string {
	return &s
}
