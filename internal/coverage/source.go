package coverage

import (
	"context"

	"testwright/internal/models"
	"testwright/internal/risk"
	"testwright/internal/store"
)

// FromStore builds the analyzer input from tracked features: one
// mapping per feature, with its approved drafts counting as tests.
// A stored risk level overrides pattern classification.
func FromStore(ctx context.Context, s store.Store, classifier *risk.Classifier) ([]FeatureTestMapping, error) {
	features, err := s.ListFeatures(ctx)
	if err != nil {
		return nil, err
	}

	mappings := make([]FeatureTestMapping, 0, len(features))
	for _, f := range features {
		var rctx *risk.Context
		if f.RiskLevel != "" {
			rctx = &risk.Context{Level: f.RiskLevel}
		}
		cl := classifier.Classify(f.Name, rctx)

		drafts, err := s.ListDrafts(ctx, store.DraftListFilter{
			FeatureID: f.ID,
			Status:    models.DraftStatusApproved,
		})
		if err != nil {
			return nil, err
		}
		files := make([]string, 0, len(drafts))
		for _, d := range drafts {
			files = append(files, d.TestName)
		}

		mappings = append(mappings, FeatureTestMapping{
			FeatureName:    f.Name,
			Classification: cl,
			TestFiles:      files,
			IsTested:       len(files) > 0,
		})
	}
	return mappings, nil
}
