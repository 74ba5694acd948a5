package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/models"
	"testwright/internal/prioritize"
)

func TestMergeResults(t *testing.T) {
	tests := []prioritize.TestInfo{
		{Name: "login.spec.ts", RiskLevel: models.RiskCritical},
		{Name: "cart.spec.ts", RiskLevel: models.RiskHigh},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"testName": "login.spec.ts", "failureRate": 0.25, "executionTimeMs": 3000},
		{"testName": "unknown.spec.ts", "failureRate": 1.0}
	]`), 0644))

	require.NoError(t, mergeResults(tests, path))

	assert.Equal(t, 0.25, tests[0].FailureRate)
	assert.Equal(t, 3*time.Second, tests[0].ExecutionTime)

	// Unmatched tests keep their zero values
	assert.Equal(t, 0.0, tests[1].FailureRate)
	assert.Equal(t, time.Duration(0), tests[1].ExecutionTime)
}

func TestMergeResults_BadFile(t *testing.T) {
	err := mergeResults(nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	assert.Error(t, mergeResults(nil, path))
}
