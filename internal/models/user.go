package models

import "time"

// UserProfile is the output of the user identification (OSINT) flow.
type UserProfile struct {
	Username       string    `json:"username"`
	Platform       Platform  `json:"platform"`
	LinkedProfiles []string  `json:"linkedProfiles" validate:"required"`
	Email          *string   `json:"email,omitempty"`
	RiskLevel      RiskLevel `json:"riskLevel" validate:"required,oneof=Low Medium High Critical"`
	Summary        string    `json:"summary" validate:"required"`
}

// SuspectedUser is the persisted investigation result, keyed by username.
// EmailHash and Analysis.Email only ever hold a SHA-256 hex digest.
type SuspectedUser struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Platform       string      `json:"platform"`
	LinkedProfiles []string    `json:"linked_profiles"`
	RiskLevel      string      `json:"risk_level"`
	Summary        string      `json:"summary"`
	EmailHash      *string     `json:"email_hash"`
	Analysis       UserProfile `json:"analysis"`
	FirstSeen      time.Time   `json:"first_seen"`
	LastSeen       time.Time   `json:"last_seen"`
}
