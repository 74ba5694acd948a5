package models

import "time"

// RiskLevel is the business/technical criticality tier of a feature.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// Severity orders risk levels for sorting: critical first.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	default:
		return 4
	}
}

// Levels lists the risk levels in descending severity order.
func Levels() []RiskLevel {
	return []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}
}

// Feature is a discovered, testable unit of application behavior.
// Selectors are opaque identifier strings produced by the crawler
// (data attributes, not full query syntax).
type Feature struct {
	ID           string
	Name         string
	Description  string
	Selectors    []string
	RiskLevel    RiskLevel
	APIEndpoints []string
	CreatedAt    time.Time
}
