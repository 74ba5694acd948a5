package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"testwright/internal/confidence"
	"testwright/internal/coverage"
	"testwright/internal/gate"
	"testwright/internal/models"
	"testwright/internal/quality"
	"testwright/internal/risk"
	"testwright/internal/store"
)

// Server wraps the testwright data layer and exposes it as MCP tools.
type Server struct {
	store      store.Store
	scorer     *quality.Scorer
	classifier *risk.Classifier
}

// NewServer creates the MCP server wrapper with all required dependencies.
func NewServer(s store.Store, classifier *risk.Classifier) *Server {
	return &Server{
		store:      s,
		scorer:     quality.NewScorer(),
		classifier: classifier,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("testwright", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.scoreTestTool())
	srv.AddTool(s.classifyFeatureTool())
	srv.AddTool(s.coverageReportTool())
	srv.AddTool(s.releaseConfidenceTool())
	srv.AddTool(s.validatePRTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// score_test
func (s *Server) scoreTestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("score_test",
		mcp.WithDescription("Statically score E2E test source code across five quality dimensions (syntax, coverage, assertions, maintainability, best practices). Returns the score vector with a 0-100 overall and the full issue list as JSON."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Test source code to score")),
		mcp.WithString("test_name", mcp.Description("Test name for the report header")),
		mcp.WithString("format", mcp.Description("Output format: json (default) or markdown")),
	)
	return tool, s.handleScoreTest
}

func (s *Server) handleScoreTest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	v := s.scorer.Score(source)

	if request.GetString("format", "json") == "markdown" {
		name := request.GetString("test_name", "untitled")
		return mcp.NewToolResultText(quality.RenderReport(name, v)), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal score: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// classify_feature
func (s *Server) classifyFeatureTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("classify_feature",
		mcp.WithDescription("Classify a feature's risk level (critical/high/medium/low) by pattern matching its name. Returns the classification with the blended 0-100 risk score as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Feature name to classify")),
		mcp.WithString("level", mcp.Description("Explicit risk level override: critical, high, medium, low")),
	)
	return tool, s.handleClassifyFeature
}

func (s *Server) handleClassifyFeature(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	var rctx *risk.Context
	if level := request.GetString("level", ""); level != "" {
		rctx = &risk.Context{Level: models.RiskLevel(level)}
	}

	cl := s.classifier.Classify(name, rctx)
	data, err := json.Marshal(cl)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal classification: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// coverage_report
func (s *Server) coverageReportTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("coverage_report",
		mcp.WithDescription("Analyze test coverage across all tracked features, weighted by risk level. Approved test drafts count as coverage. Returns per-level coverage, the risk-weighted score, and prioritized gaps."),
		mcp.WithString("format", mcp.Description("Output format: json (default) or markdown")),
	)
	return tool, s.handleCoverageReport
}

func (s *Server) handleCoverageReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mappings, err := coverage.FromStore(ctx, s.store, s.classifier)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load features: %v", err)), nil
	}

	metrics := coverage.Analyze(mappings)

	if request.GetString("format", "json") == "markdown" {
		return mcp.NewToolResultText(coverage.RenderReport(metrics)), nil
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal coverage: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// release_confidence
func (s *Server) releaseConfidenceTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("release_confidence",
		mcp.WithDescription("Compute the layered release-confidence score from test run results plus stored coverage, quality, and review data. Returns component scores, the 0-100 overall, and a release recommendation."),
		mcp.WithNumber("total", mcp.Required(), mcp.Description("Total tests in the run")),
		mcp.WithNumber("passed", mcp.Required(), mcp.Description("Tests that passed")),
		mcp.WithNumber("failed", mcp.Description("Tests that failed")),
		mcp.WithNumber("skipped", mcp.Description("Tests that were skipped")),
	)
	return tool, s.handleReleaseConfidence
}

func (s *Server) handleReleaseConfidence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score, result := s.confidenceFromRequest(ctx, request)
	if result != nil {
		return result, nil
	}

	data, err := json.Marshal(score)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal confidence: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// validate_pr
func (s *Server) validatePRTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("validate_pr",
		mcp.WithDescription("Run the PR quality gates (pass rate, risk coverage, quality, overall confidence) against test run results. Returns pass/fail per gate plus a ready-to-post markdown PR comment."),
		mcp.WithNumber("total", mcp.Required(), mcp.Description("Total tests in the run")),
		mcp.WithNumber("passed", mcp.Required(), mcp.Description("Tests that passed")),
		mcp.WithNumber("failed", mcp.Description("Tests that failed")),
		mcp.WithNumber("skipped", mcp.Description("Tests that were skipped")),
	)
	return tool, s.handleValidatePR
}

func (s *Server) handleValidatePR(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score, errResult := s.confidenceFromRequest(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	validation := gate.Validate(score)

	result := map[string]any{
		"passed":   validation.OverallPassed,
		"gates":    validation.Gates,
		"blockers": validation.Blockers,
		"warnings": validation.Warnings,
		"comment":  gate.RenderComment(validation, score),
	}
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal validation: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// confidenceFromRequest assembles the confidence input from the run
// stats in the request plus store-backed coverage, quality, and review
// signals. Returns a non-nil error result on failure.
func (s *Server) confidenceFromRequest(ctx context.Context, request mcp.CallToolRequest) (*confidence.Score, *mcp.CallToolResult) {
	total, err := request.RequireInt("total")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: total")
	}
	passed, err := request.RequireInt("passed")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: passed")
	}
	run := models.TestRunStats{
		Total:   total,
		Passed:  passed,
		Failed:  request.GetInt("failed", 0),
		Skipped: request.GetInt("skipped", 0),
	}

	mappings, err := coverage.FromStore(ctx, s.store, s.classifier)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load features: %v", err))
	}

	vectors, err := s.approvedQuality(ctx)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load drafts: %v", err))
	}

	validations, err := s.validationStats(ctx)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load decisions: %v", err))
	}

	return confidence.Calculate(confidence.Input{
		Run:         run,
		Coverage:    coverage.Analyze(mappings),
		Quality:     vectors,
		Validations: validations,
	}), nil
}

// approvedQuality re-scores every approved draft's source.
func (s *Server) approvedQuality(ctx context.Context) ([]*quality.Vector, error) {
	drafts, err := s.store.ListDrafts(ctx, store.DraftListFilter{Status: models.DraftStatusApproved})
	if err != nil {
		return nil, err
	}
	vectors := make([]*quality.Vector, 0, len(drafts))
	for _, d := range drafts {
		vectors = append(vectors, s.scorer.Score(d.Source))
	}
	return vectors, nil
}

// validationStats counts review outcomes from the decision history.
func (s *Server) validationStats(ctx context.Context) (confidence.ValidationStats, error) {
	decisions, err := s.store.ListDecisions(ctx)
	if err != nil {
		return confidence.ValidationStats{}, err
	}
	var stats confidence.ValidationStats
	for _, d := range decisions {
		if d.Approved {
			stats.Approved++
		} else {
			stats.Rejected++
		}
	}
	return stats, nil
}
