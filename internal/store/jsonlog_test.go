package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/models"
)

func TestDecisionLog_MissingFile(t *testing.T) {
	l := NewDecisionLog(filepath.Join(t.TempDir(), "rejections.json"))

	records, err := l.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecisionLog_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rejections.json")
	l := NewDecisionLog(path)

	d1 := models.Decision{
		ID:              "01",
		TestName:        "cart.spec.ts",
		Approved:        false,
		RejectionReason: models.ReasonFlakyPattern,
		ReviewedAt:      time.Now().Add(-time.Hour).UTC(),
		ReviewedBy:      "alice",
	}
	require.NoError(t, l.Append(d1))

	d2 := models.Decision{
		ID:         "02",
		TestName:   "search.spec.ts",
		Approved:   true,
		ReviewedAt: time.Now().UTC(),
		ReviewedBy: "bob",
	}
	require.NoError(t, l.Append(d2))

	records, err := l.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first, appends preserve order
	assert.Equal(t, "cart.spec.ts", records[0].TestName)
	assert.Equal(t, models.ReasonFlakyPattern, records[0].RejectionReason)
	assert.Equal(t, "search.spec.ts", records[1].TestName)
	assert.True(t, records[1].Approved)
}

func TestDecisionLog_CreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "approved.json")
	l := NewDecisionLog(path)

	require.NoError(t, l.Append(models.Decision{ID: "01", TestName: "a.spec.ts"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDecisionLog_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejections.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

	l := NewDecisionLog(path)

	records, err := l.ReadAll()
	require.NoError(t, err, "corrupt history degrades to empty, not an error")
	assert.Empty(t, records)

	// Appending after corruption starts a fresh log
	require.NoError(t, l.Append(models.Decision{ID: "01", TestName: "a.spec.ts"}))
	records, err = l.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
