package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"testwright/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// marshalStrings JSON-encodes a string slice for a TEXT column.
func marshalStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	data, err := json.Marshal(ss)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Features ---

func (s *SQLiteStore) CreateFeature(ctx context.Context, f *models.Feature) error {
	if f.ID == "" {
		f.ID = newULID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	selectors, err := marshalStrings(f.Selectors)
	if err != nil {
		return err
	}
	endpoints, err := marshalStrings(f.APIEndpoints)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO features (id, name, description, selectors, risk_level, api_endpoints, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Description, selectors, string(f.RiskLevel), endpoints, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create feature: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFeature(ctx context.Context, id string) (*models.Feature, error) {
	return s.getFeature(ctx, "id = ?", id)
}

func (s *SQLiteStore) GetFeatureByName(ctx context.Context, name string) (*models.Feature, error) {
	return s.getFeature(ctx, "name = ?", name)
}

func (s *SQLiteStore) getFeature(ctx context.Context, where string, arg any) (*models.Feature, error) {
	f := &models.Feature{}
	var selectors, endpoints, level string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, selectors, risk_level, api_endpoints, created_at
		FROM features WHERE `+where, arg,
	).Scan(&f.ID, &f.Name, &f.Description, &selectors, &level, &endpoints, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feature not found: %v", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("get feature: %w", err)
	}
	f.RiskLevel = models.RiskLevel(level)
	_ = json.Unmarshal([]byte(selectors), &f.Selectors)
	_ = json.Unmarshal([]byte(endpoints), &f.APIEndpoints)
	return f, nil
}

func (s *SQLiteStore) ListFeatures(ctx context.Context) ([]*models.Feature, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, selectors, risk_level, api_endpoints, created_at
		FROM features ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	var features []*models.Feature
	for rows.Next() {
		f := &models.Feature{}
		var selectors, endpoints, level string
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &selectors, &level, &endpoints, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		f.RiskLevel = models.RiskLevel(level)
		_ = json.Unmarshal([]byte(selectors), &f.Selectors)
		_ = json.Unmarshal([]byte(endpoints), &f.APIEndpoints)
		features = append(features, f)
	}
	return features, rows.Err()
}

func (s *SQLiteStore) UpdateFeature(ctx context.Context, f *models.Feature) error {
	selectors, err := marshalStrings(f.Selectors)
	if err != nil {
		return err
	}
	endpoints, err := marshalStrings(f.APIEndpoints)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE features SET name = ?, description = ?, selectors = ?, risk_level = ?, api_endpoints = ? WHERE id = ?`,
		f.Name, f.Description, selectors, string(f.RiskLevel), endpoints, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update feature: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("feature not found: %s", f.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteFeature(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM features WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete feature: %w", err)
	}
	return nil
}

// --- Test drafts ---

func (s *SQLiteStore) CreateDraft(ctx context.Context, d *models.TestDraft) error {
	if d.ID == "" {
		d.ID = newULID()
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now().UTC()
	}
	if d.Status == "" {
		d.Status = models.DraftStatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_drafts (id, feature_id, test_name, description, source, status, overall_score, generated_at, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.FeatureID, d.TestName, d.Description, d.Source, string(d.Status), d.OverallScore, d.GeneratedAt, d.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDraft(ctx context.Context, id string) (*models.TestDraft, error) {
	d := &models.TestDraft{}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, feature_id, test_name, description, source, status, overall_score, generated_at, reviewed_at
		FROM test_drafts WHERE id = ?`, id,
	).Scan(&d.ID, &d.FeatureID, &d.TestName, &d.Description, &d.Source, &status, &d.OverallScore, &d.GeneratedAt, &d.ReviewedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("draft not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	d.Status = models.DraftStatus(status)
	return d, nil
}

func (s *SQLiteStore) ListDrafts(ctx context.Context, filter DraftListFilter) ([]*models.TestDraft, error) {
	query := `SELECT id, feature_id, test_name, description, source, status, overall_score, generated_at, reviewed_at
		FROM test_drafts WHERE 1=1`
	var args []any
	if filter.FeatureID != "" {
		query += " AND feature_id = ?"
		args = append(args, filter.FeatureID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY generated_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.TestDraft
	for rows.Next() {
		d := &models.TestDraft{}
		var status string
		if err := rows.Scan(&d.ID, &d.FeatureID, &d.TestName, &d.Description, &d.Source, &status, &d.OverallScore, &d.GeneratedAt, &d.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		d.Status = models.DraftStatus(status)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (s *SQLiteStore) UpdateDraft(ctx context.Context, d *models.TestDraft) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE test_drafts SET test_name = ?, description = ?, source = ?, status = ?, overall_score = ?, reviewed_at = ? WHERE id = ?`,
		d.TestName, d.Description, d.Source, string(d.Status), d.OverallScore, d.ReviewedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("draft not found: %s", d.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteDraft(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM test_drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// --- Review decisions ---

func (s *SQLiteStore) CreateDecision(ctx context.Context, d *models.Decision) error {
	if d.ID == "" {
		d.ID = newULID()
	}
	if d.ReviewedAt.IsZero() {
		d.ReviewedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, test_name, approved, rejection_reason, comments, reviewed_at, reviewed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.TestName, boolToInt(d.Approved), string(d.RejectionReason), d.Comments, d.ReviewedAt, d.ReviewedBy,
	)
	if err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDecisions(ctx context.Context) ([]*models.Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, test_name, approved, rejection_reason, comments, reviewed_at, reviewed_by
		FROM decisions ORDER BY reviewed_at`)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		d := &models.Decision{}
		var reason string
		if err := rows.Scan(&d.ID, &d.TestName, &d.Approved, &reason, &d.Comments, &d.ReviewedAt, &d.ReviewedBy); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.RejectionReason = models.RejectionReason(reason)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
