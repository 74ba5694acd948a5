package models

// TestRunStats aggregates a test run's outcome counts.
type TestRunStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// PassRate returns the pass percentage, 0 for an empty run.
func (t TestRunStats) PassRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Passed) / float64(t.Total) * 100
}
