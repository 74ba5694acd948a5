package store

import (
	"context"

	"testwright/internal/models"
)

// DraftListFilter specifies filters for listing test drafts.
type DraftListFilter struct {
	FeatureID string
	Status    models.DraftStatus
}

// Store defines the persistence interface for testwright.
type Store interface {
	// Features
	CreateFeature(ctx context.Context, f *models.Feature) error
	GetFeature(ctx context.Context, id string) (*models.Feature, error)
	GetFeatureByName(ctx context.Context, name string) (*models.Feature, error)
	ListFeatures(ctx context.Context) ([]*models.Feature, error)
	UpdateFeature(ctx context.Context, f *models.Feature) error
	DeleteFeature(ctx context.Context, id string) error

	// Test drafts
	CreateDraft(ctx context.Context, d *models.TestDraft) error
	GetDraft(ctx context.Context, id string) (*models.TestDraft, error)
	ListDrafts(ctx context.Context, filter DraftListFilter) ([]*models.TestDraft, error)
	UpdateDraft(ctx context.Context, d *models.TestDraft) error
	DeleteDraft(ctx context.Context, id string) error

	// Review decisions
	CreateDecision(ctx context.Context, d *models.Decision) error
	ListDecisions(ctx context.Context) ([]*models.Decision, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
