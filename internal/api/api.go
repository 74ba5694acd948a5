// Package api exposes a small read-mostly REST surface over the
// testwright data layer, for dashboards and CI integrations.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"testwright/internal/confidence"
	"testwright/internal/coverage"
	"testwright/internal/models"
	"testwright/internal/quality"
	"testwright/internal/risk"
	"testwright/internal/store"
)

// Server provides the REST API handlers.
type Server struct {
	store      store.Store
	scorer     *quality.Scorer
	classifier *risk.Classifier
	log        *slog.Logger
}

// NewServer creates a new API server.
func NewServer(s store.Store, classifier *risk.Classifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		store:      s,
		scorer:     quality.NewScorer(),
		classifier: classifier,
		log:        log,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/features", s.listFeatures)
	mux.HandleFunc("GET /api/coverage", s.getCoverage)
	mux.HandleFunc("GET /api/confidence", s.getConfidence)
	mux.HandleFunc("POST /api/score", s.scoreTest)
	mux.HandleFunc("GET /healthz", s.healthz)

	return corsMiddleware(s.logMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Handlers ---

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := s.store.ListFeatures(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if features == nil {
		features = []*models.Feature{}
	}
	writeJSON(w, http.StatusOK, features)
}

func (s *Server) getCoverage(w http.ResponseWriter, r *http.Request) {
	mappings, err := coverage.FromStore(r.Context(), s.store, s.classifier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, coverage.Analyze(mappings))
}

// getConfidence blends stored coverage/quality/review data with run
// stats passed as query parameters (total, passed, failed, skipped).
func (s *Server) getConfidence(w http.ResponseWriter, r *http.Request) {
	run := models.TestRunStats{
		Total:   queryInt(r, "total"),
		Passed:  queryInt(r, "passed"),
		Failed:  queryInt(r, "failed"),
		Skipped: queryInt(r, "skipped"),
	}

	mappings, err := coverage.FromStore(r.Context(), s.store, s.classifier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	drafts, err := s.store.ListDrafts(r.Context(), store.DraftListFilter{Status: models.DraftStatusApproved})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	vectors := make([]*quality.Vector, 0, len(drafts))
	for _, d := range drafts {
		vectors = append(vectors, s.scorer.Score(d.Source))
	}

	decisions, err := s.store.ListDecisions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var validations confidence.ValidationStats
	for _, d := range decisions {
		if d.Approved {
			validations.Approved++
		} else {
			validations.Rejected++
		}
	}

	score := confidence.Calculate(confidence.Input{
		Run:         run,
		Coverage:    coverage.Analyze(mappings),
		Quality:     vectors,
		Validations: validations,
	})
	writeJSON(w, http.StatusOK, score)
}

type scoreRequest struct {
	TestName string `json:"testName"`
	Source   string `json:"source"`
}

func (s *Server) scoreTest(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}
	writeJSON(w, http.StatusOK, s.scorer.Score(req.Source))
}

// --- Helpers ---

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
