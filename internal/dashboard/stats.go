// Package dashboard aggregates flagged posts into the tables shown on the dashboard.
package dashboard

import (
	"sort"

	"github.com/Trigerxx3/cyber/internal/models"
)

// TopKeywords is the maximum number of keywords kept in the keyword table.
const TopKeywords = 10

// counter is a frequency table that remembers first-encounter order.
type counter struct {
	index map[string]int
	table models.FrequencyTable
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(name string) {
	if name == "" {
		return
	}
	if i, ok := c.index[name]; ok {
		c.table[i].Count++
		return
	}
	c.index[name] = len(c.table)
	c.table = append(c.table, models.Bucket{Name: name, Count: 1})
}

// ComputeStats counts risk levels, platforms and keywords in a single pass.
// Risk level and platform tables keep first-encounter order. The keyword table
// is sorted by descending count, ties keep first-encounter order, and it is
// cut to TopKeywords entries.
func ComputeStats(posts []models.FlaggedPost) models.DashboardStats {
	risk, platform, keywords := newCounter(), newCounter(), newCounter()

	for _, post := range posts {
		risk.add(post.RiskLevel)
		platform.add(post.Platform)
		for _, keyword := range post.DetectedKeywords {
			keywords.add(keyword)
		}
	}

	top := keywords.table
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > TopKeywords {
		top = top[:TopKeywords]
	}

	return models.DashboardStats{
		RiskLevelCounts: nonNil(risk.table),
		PlatformCounts:  nonNil(platform.table),
		KeywordCounts:   nonNil(top),
	}
}

// nonNil keeps empty tables encoding as [] rather than null.
func nonNil(t models.FrequencyTable) models.FrequencyTable {
	if t == nil {
		return models.FrequencyTable{}
	}
	return t
}
