package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/Trigerxx3/cyber/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(platform, risk string, keywords ...string) models.FlaggedPost {
	return models.FlaggedPost{Platform: platform, RiskLevel: risk, DetectedKeywords: keywords}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.NotNil(t, stats.RiskLevelCounts)
	assert.NotNil(t, stats.PlatformCounts)
	assert.NotNil(t, stats.KeywordCounts)
	assert.Empty(t, stats.KeywordCounts)
}

func TestComputeStats_Counts(t *testing.T) {
	stats := ComputeStats([]models.FlaggedPost{
		post("Telegram", "High", "MDMA", "pills"),
		post("Instagram", "Medium", "pills"),
		post("Telegram", "High", "molly", "MDMA", "pills"),
	})

	assert.Equal(t, models.FrequencyTable{{Name: "High", Count: 2}, {Name: "Medium", Count: 1}}, stats.RiskLevelCounts)
	assert.Equal(t, models.FrequencyTable{{Name: "Telegram", Count: 2}, {Name: "Instagram", Count: 1}}, stats.PlatformCounts)
	assert.Equal(t, models.FrequencyTable{
		{Name: "pills", Count: 3},
		{Name: "MDMA", Count: 2},
		{Name: "molly", Count: 1},
	}, stats.KeywordCounts)
}

func TestComputeStats_TiesKeepFirstEncounterOrder(t *testing.T) {
	stats := ComputeStats([]models.FlaggedPost{
		post("Telegram", "High", "zeta", "alpha"),
		post("Telegram", "High", "mid"),
		post("Telegram", "High", "alpha", "zeta", "mid"),
	})

	require.Len(t, stats.KeywordCounts, 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names(stats.KeywordCounts))
}

func TestComputeStats_TopTenSortedDescending(t *testing.T) {
	var posts []models.FlaggedPost
	for i := 0; i < 15; i++ {
		// keyword kw<i> appears i+1 times
		for j := 0; j <= i; j++ {
			posts = append(posts, post("WhatsApp", "Medium", fmt.Sprintf("kw%d", i)))
		}
	}

	stats := ComputeStats(posts)
	require.Len(t, stats.KeywordCounts, TopKeywords)
	assert.Equal(t, "kw14", stats.KeywordCounts[0].Name)
	assert.Equal(t, 15, stats.KeywordCounts[0].Count)
	for i := 1; i < len(stats.KeywordCounts); i++ {
		assert.GreaterOrEqual(t, stats.KeywordCounts[i-1].Count, stats.KeywordCounts[i].Count)
	}
	assert.Equal(t, 0, stats.KeywordCounts.Get("kw0"))
	assert.Equal(t, 120, stats.PlatformCounts.Get("WhatsApp"))
}

func TestSampleData(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data := SampleData(now)

	assert.True(t, data.Demo)
	require.Len(t, data.FlaggedPosts, 4)
	require.Len(t, data.SuspectedUsers, 2)
	assert.Equal(t, "sample-post-0", data.FlaggedPosts[0].ID)
	assert.Equal(t, now, data.SuspectedUsers[1].LastSeen)

	assert.Equal(t, 3, data.Stats.RiskLevelCounts.Get("High"))
	assert.Equal(t, 1, data.Stats.RiskLevelCounts.Get("Medium"))
	assert.Equal(t, 2, data.Stats.PlatformCounts.Get("Telegram"))
	assert.Len(t, data.Stats.KeywordCounts, 9)
	assert.Equal(t, "MDMA", data.Stats.KeywordCounts[0].Name, "all ties, first encountered wins")

	for _, p := range data.FlaggedPosts {
		assert.Equal(t, models.StatusFlagged, p.Status)
		assert.NotEqual(t, "Low", p.RiskLevel)
	}
}

func names(t models.FrequencyTable) []string {
	out := make([]string, len(t))
	for i, b := range t {
		out[i] = b.Name
	}
	return out
}
