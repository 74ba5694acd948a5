// Package review manages human review sessions over generated test
// drafts. A session walks the pending queue, applies approve/reject
// decisions, and persists each decision to the store and to the
// append-only record logs consumed by the rejection tracker.
package review

import (
	"context"
	"fmt"
	"time"

	"testwright/internal/models"
	"testwright/internal/quality"
	"testwright/internal/store"
)

// Session is a single reviewer's pass over pending drafts. Decisions
// made during the session are kept in memory so callers can compute
// a session summary without re-reading the logs.
type Session struct {
	store       store.Store
	rejectedLog *store.DecisionLog
	approvedLog *store.DecisionLog
	scorer      *quality.Scorer
	reviewer    string

	decisions []models.Decision
}

// NewSession creates a review session for the named reviewer.
func NewSession(s store.Store, rejectedLog, approvedLog *store.DecisionLog, reviewer string) *Session {
	return &Session{
		store:       s,
		rejectedLog: rejectedLog,
		approvedLog: approvedLog,
		scorer:      quality.NewScorer(),
		reviewer:    reviewer,
	}
}

// Pending returns the drafts awaiting review, oldest first.
func (s *Session) Pending(ctx context.Context) ([]*models.TestDraft, error) {
	return s.store.ListDrafts(ctx, store.DraftListFilter{Status: models.DraftStatusPending})
}

// Evaluate re-scores a draft's source so the reviewer sees the current
// issue list alongside the stored overall score.
func (s *Session) Evaluate(d *models.TestDraft) *quality.Vector {
	return s.scorer.Score(d.Source)
}

// Approve marks the draft approved and records the decision.
func (s *Session) Approve(ctx context.Context, d *models.TestDraft, comments string) (*models.Decision, error) {
	decision := models.Decision{
		TestName:   d.TestName,
		Approved:   true,
		Comments:   comments,
		ReviewedAt: time.Now().UTC(),
		ReviewedBy: s.reviewer,
	}
	if err := s.apply(ctx, d, &decision, models.DraftStatusApproved, s.approvedLog); err != nil {
		return nil, err
	}
	return &decision, nil
}

// Reject marks the draft rejected with a reason from the closed enum
// and records the decision.
func (s *Session) Reject(ctx context.Context, d *models.TestDraft, reason models.RejectionReason, comments string) (*models.Decision, error) {
	if !models.ValidRejectionReason(reason) {
		return nil, fmt.Errorf("invalid rejection reason: %q", reason)
	}
	decision := models.Decision{
		TestName:        d.TestName,
		Approved:        false,
		RejectionReason: reason,
		Comments:        comments,
		ReviewedAt:      time.Now().UTC(),
		ReviewedBy:      s.reviewer,
	}
	if err := s.apply(ctx, d, &decision, models.DraftStatusRejected, s.rejectedLog); err != nil {
		return nil, err
	}
	return &decision, nil
}

// apply persists in order: decision row, record log, draft status.
// The log append happens before the draft update so a crash cannot
// leave a reviewed draft with no record of why.
func (s *Session) apply(ctx context.Context, d *models.TestDraft, decision *models.Decision, status models.DraftStatus, log *store.DecisionLog) error {
	if err := s.store.CreateDecision(ctx, decision); err != nil {
		return err
	}
	if log != nil {
		if err := log.Append(*decision); err != nil {
			return err
		}
	}

	d.Status = status
	reviewedAt := decision.ReviewedAt
	d.ReviewedAt = &reviewedAt
	if err := s.store.UpdateDraft(ctx, d); err != nil {
		return err
	}

	s.decisions = append(s.decisions, *decision)
	return nil
}

// Decisions returns the decisions made during this session, in order.
func (s *Session) Decisions() []models.Decision {
	return s.decisions
}

// History returns prior rejection records for trend analysis. A
// missing or unreadable log yields an empty history.
func (s *Session) History() []models.Decision {
	if s.rejectedLog == nil {
		return nil
	}
	records, err := s.rejectedLog.ReadAll()
	if err != nil {
		return nil
	}
	return records
}

// Summary reports approved/rejected counts for the session.
func (s *Session) Summary() (approved, rejected int) {
	for _, d := range s.decisions {
		if d.Approved {
			approved++
		} else {
			rejected++
		}
	}
	return approved, rejected
}
