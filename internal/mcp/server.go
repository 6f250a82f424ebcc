// Package mcp provides an MCP (Model Context Protocol) server that exposes a
// live pattern log as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/pattern-metrics/internal/core"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
	"github.com/valter-silva-au/pattern-metrics/pkg/models"
)

// Server wraps a PatternLog and exposes it as MCP tools.
type Server struct {
	server        *gomcp.Server
	patterns      observability.PatternLog
	alertEngine   observability.AlertEngine
	defaultWindow time.Duration
}

// NewServer creates a new MCP server over patterns. alertEngine may be nil,
// in which case get_alerts reports an error result. A non-positive
// defaultWindow falls back to observability.DefaultWindow.
func NewServer(patterns observability.PatternLog, alertEngine observability.AlertEngine, defaultWindow time.Duration, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if defaultWindow <= 0 {
		defaultWindow = observability.DefaultWindow
	}

	s := &Server{
		patterns:      patterns,
		alertEngine:   alertEngine,
		defaultWindow: defaultWindow,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pmetrics", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type recordPatternInput struct {
	PatternType string  `json:"pattern_type" jsonschema:"the kind of pattern detected (e.g. recursion, analogy)"`
	MetaLevel   float64 `json:"meta_level" jsonschema:"abstraction depth of the observation"`
	ScriptType  string  `json:"script_type" jsonschema:"category of the analyzed script"`
	Confidence  float64 `json:"confidence" jsonschema:"detector confidence, nominally between 0 and 1"`
	ObservedAt  string  `json:"observed_at,omitempty" jsonschema:"RFC3339 detection time. Defaults to now."`
}

type recordPatternOutput struct {
	Message      string `json:"message"`
	Observations int    `json:"observations"`
}

type emptyInput struct{}

type patternCountsOutput struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type scriptDistributionOutput struct {
	Distribution map[string]float64 `json:"distribution"`
}

type windowInput struct {
	Window string `json:"window,omitempty" jsonschema:"trailing window (e.g. 30m, 1h, 7d). Defaults to the configured window."`
}

type windowOutput struct {
	Window  string                       `json:"window"`
	Metrics *observability.WindowMetrics `json:"metrics,omitempty"`
}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "record_pattern",
		Description: "Record one pattern observation (pattern type, meta-level, script type, confidence).",
	}, s.handleRecordPattern)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_pattern_counts",
		Description: "Get the number of observations recorded per pattern type.",
	}, s.handleGetPatternCounts)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_meta_level_progression",
		Description: "Get the average, linear trend, max and min of recorded meta-levels.",
	}, s.handleGetMetaLevelProgression)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_script_distribution",
		Description: "Get each script type's share of all recorded observations.",
	}, s.handleGetScriptDistribution)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_confidence_trends",
		Description: "Get the average, linear trend, recent average and volatility of confidence scores.",
	}, s.handleGetConfidenceTrends)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_time_windowed_metrics",
		Description: "Get count, average confidence, average meta-level and frequency for observations in a trailing window.",
	}, s.handleGetTimeWindowedMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (low, volatile or declining confidence, declining meta-level).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleRecordPattern(_ context.Context, _ *gomcp.CallToolRequest, input recordPatternInput) (*gomcp.CallToolResult, recordPatternOutput, error) {
	obs := models.Observation{
		PatternType: input.PatternType,
		MetaLevel:   input.MetaLevel,
		ScriptType:  input.ScriptType,
		Confidence:  input.Confidence,
	}

	if input.ObservedAt != "" {
		at, err := time.Parse(time.RFC3339, input.ObservedAt)
		if err != nil {
			return errorResult(fmt.Sprintf("parsing observed_at: %s", err)), recordPatternOutput{}, nil
		}
		s.patterns.RecordAt(obs, at)
	} else {
		s.patterns.Record(obs)
	}

	out := recordPatternOutput{
		Message:      fmt.Sprintf("recorded %s pattern", input.PatternType),
		Observations: s.patterns.Len(),
	}
	return nil, out, nil
}

func (s *Server) handleGetPatternCounts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, patternCountsOutput, error) {
	counts := s.patterns.PatternTypeCounts()
	total := 0
	for _, c := range counts {
		total += c
	}
	return nil, patternCountsOutput{Counts: counts, Total: total}, nil
}

func (s *Server) handleGetMetaLevelProgression(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, observability.MetaLevelProgression, error) {
	return nil, s.patterns.MetaLevelProgression(), nil
}

func (s *Server) handleGetScriptDistribution(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, scriptDistributionOutput, error) {
	return nil, scriptDistributionOutput{Distribution: s.patterns.ScriptTypeDistribution()}, nil
}

func (s *Server) handleGetConfidenceTrends(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, observability.ConfidenceTrends, error) {
	return nil, s.patterns.ConfidenceTrends(), nil
}

func (s *Server) handleGetTimeWindowedMetrics(_ context.Context, _ *gomcp.CallToolRequest, input windowInput) (*gomcp.CallToolResult, windowOutput, error) {
	window := s.defaultWindow
	if input.Window != "" {
		parsed, err := core.ParseWindow(input.Window)
		if err != nil {
			return errorResult(fmt.Sprintf("parsing window: %s", err)), windowOutput{}, nil
		}
		window = parsed
	}

	out := windowOutput{
		Window:  observability.FormatWindow(window),
		Metrics: s.patterns.TimeWindowedMetrics(window),
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
