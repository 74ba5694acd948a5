package discovery

import (
	"encoding/json"
	"fmt"
	"os"

	"testwright/internal/models"
)

// Record is one discovered page/feature as produced by the crawler.
// The crawler itself is an external collaborator; its output is
// consumed here as plain data.
type Record struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Selectors    []string         `json:"selectors"`
	RiskLevel    models.RiskLevel `json:"riskLevel"`
	APIEndpoints []string         `json:"apiEndpoints"`
}

// LoadRecords reads a JSON array of discovery records. Records with no
// name are skipped and reported in the second return value; a bad
// record never aborts the rest of the import.
func LoadRecords(path string) ([]Record, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read discovery file: %w", err)
	}

	var raw []Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse discovery file: %w", err)
	}

	var records []Record
	var skipped []string
	for i, r := range raw {
		if r.Name == "" {
			skipped = append(skipped, fmt.Sprintf("record %d: missing name", i))
			continue
		}
		if r.RiskLevel != "" && r.RiskLevel.Severity() > models.RiskLow.Severity() {
			skipped = append(skipped, fmt.Sprintf("record %d (%s): unknown risk level %q", i, r.Name, r.RiskLevel))
			r.RiskLevel = ""
		}
		records = append(records, r)
	}
	return records, skipped, nil
}

// Feature converts a discovery record into the persisted feature shape.
func (r Record) Feature() *models.Feature {
	return &models.Feature{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Selectors:    r.Selectors,
		RiskLevel:    r.RiskLevel,
		APIEndpoints: r.APIEndpoints,
	}
}
