package models

import "time"

// RejectionReason is the closed set of reasons a reviewer can reject a draft.
type RejectionReason string

const (
	ReasonWrongSelectors    RejectionReason = "wrong-selectors"
	ReasonMissingAssertions RejectionReason = "missing-assertions"
	ReasonIncorrectFlow     RejectionReason = "incorrect-flow"
	ReasonFlakyPattern      RejectionReason = "flaky-pattern"
	ReasonHardcodedData     RejectionReason = "hardcoded-data"
	ReasonDuplicateCoverage RejectionReason = "duplicate-coverage"
	ReasonWrongFeature      RejectionReason = "wrong-feature"
	ReasonPoorNaming        RejectionReason = "poor-naming"
	ReasonMissingEdgeCases  RejectionReason = "missing-edge-cases"
	ReasonOther             RejectionReason = "other"
)

// RejectionReasons lists every valid rejection reason.
func RejectionReasons() []RejectionReason {
	return []RejectionReason{
		ReasonWrongSelectors,
		ReasonMissingAssertions,
		ReasonIncorrectFlow,
		ReasonFlakyPattern,
		ReasonHardcodedData,
		ReasonDuplicateCoverage,
		ReasonWrongFeature,
		ReasonPoorNaming,
		ReasonMissingEdgeCases,
		ReasonOther,
	}
}

// ValidRejectionReason reports whether r is one of the closed enum values.
func ValidRejectionReason(r RejectionReason) bool {
	for _, v := range RejectionReasons() {
		if v == r {
			return true
		}
	}
	return false
}

// Decision records a single human approve/reject decision on a test draft.
type Decision struct {
	ID              string          `json:"id"`
	TestName        string          `json:"testName"`
	Approved        bool            `json:"approved"`
	RejectionReason RejectionReason `json:"rejectionReason,omitempty"`
	Comments        string          `json:"comments,omitempty"`
	ReviewedAt      time.Time       `json:"reviewedAt"`
	ReviewedBy      string          `json:"reviewedBy"`
}
