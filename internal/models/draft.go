package models

import "time"

// DraftStatus represents where a generated test draft is in the review workflow.
type DraftStatus string

const (
	DraftStatusPending  DraftStatus = "pending"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusRejected DraftStatus = "rejected"
)

// TestDraft is an LLM-generated end-to-end test awaiting human review.
// Source is opaque text; it is scored by pattern matching, never executed.
type TestDraft struct {
	ID           string
	FeatureID    string
	TestName     string
	Description  string
	Source       string
	Status       DraftStatus
	OverallScore int // quality score at generation time, 0-100
	GeneratedAt  time.Time
	ReviewedAt   *time.Time
}
