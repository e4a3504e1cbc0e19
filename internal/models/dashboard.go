package models

// ActionResult is what every persistence action returns instead of an error.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DocID   string `json:"docId,omitempty"`
}

// Bucket is one row of a frequency table.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FrequencyTable keeps buckets in a meaningful order, which a JSON object would lose.
type FrequencyTable []Bucket

// Get returns the count for name, or zero.
func (t FrequencyTable) Get(name string) int {
	for _, b := range t {
		if b.Name == name {
			return b.Count
		}
	}
	return 0
}

// DashboardStats are the aggregate tables shown on the dashboard.
type DashboardStats struct {
	RiskLevelCounts FrequencyTable `json:"riskLevelCounts"`
	PlatformCounts  FrequencyTable `json:"platformCounts"`
	KeywordCounts   FrequencyTable `json:"keywordCounts"`
}

// DashboardData is the payload for the aggregated view.
type DashboardData struct {
	FlaggedPosts   []FlaggedPost   `json:"flaggedPosts"`
	SuspectedUsers []SuspectedUser `json:"suspectedUsers"`
	Stats          DashboardStats  `json:"stats"`
	Demo           bool            `json:"demo"`
}
