package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"testwright/internal/models"
)

// DecisionLog is an append-only JSON-array record store for review
// decisions. Each append is a scoped read-modify-write of the whole
// file. Concurrent writers are not supported: a single review session
// per store is assumed; callers needing more must add their own
// locking.
type DecisionLog struct {
	path string
}

// NewDecisionLog creates a log backed by the given file path.
func NewDecisionLog(path string) *DecisionLog {
	return &DecisionLog{path: path}
}

// ReadAll returns every record in the log, oldest first. A missing or
// corrupt file degrades to an empty history: derived statistics are
// additive, so resilience matters more than completeness here.
func (l *DecisionLog) ReadAll() ([]models.Decision, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read decision log: %w", err)
	}

	var records []models.Decision
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil
	}
	return records, nil
}

// Append durably adds a record to the log before the caller's
// in-memory counters may treat it as recorded.
func (l *DecisionLog) Append(d models.Decision) error {
	records, err := l.ReadAll()
	if err != nil {
		return err
	}
	records = append(records, d)

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decision log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write decision log: %w", err)
	}
	return nil
}
