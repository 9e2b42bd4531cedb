// Package mcp provides MCP (Model Context Protocol) tool adapters for Sage.
// This package allows Sage to be integrated with MCP-compatible agent
// frameworks over stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/sage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with Sage tools.
type Server struct {
	client    *sage.Client
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with Sage tools registered.
func NewServer(client *sage.Client) *Server {
	s := &Server{
		client: client,
	}

	s.mcpServer = server.NewMCPServer(
		"sage",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout.
// It uses os.Stdin and os.Stdout internally via the mcp-go ServeStdio function.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "sage_record_session", Description: "Record a completed learning session for a learner"},
		{Name: "sage_record_indicators", Description: "Record behavioral observations and refresh the learner's style profile"},
		{Name: "sage_review_content", Description: "Apply a quality-graded review to a content item and get the next review date"},
		{Name: "sage_study_schedule", Description: "Build a prioritized review plan that fits a time budget"},
		{Name: "sage_recommend", Description: "Get diversified content recommendations for a learner"},
		{Name: "sage_performance", Description: "Analyze a learner's performance metrics, trend, and anomalies"},
		{Name: "sage_stats", Description: "Get store statistics"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "sage_record_session":
		return s.handleRecordSession(ctx, args)
	case "sage_record_indicators":
		return s.handleRecordIndicators(ctx, args)
	case "sage_review_content":
		return s.handleReviewContent(ctx, args)
	case "sage_study_schedule":
		return s.handleStudySchedule(ctx, args)
	case "sage_recommend":
		return s.handleRecommend(ctx, args)
	case "sage_performance":
		return s.handlePerformance(ctx, args)
	case "sage_stats":
		return s.handleStats(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("sage_record_session",
		mcp.WithDescription("Record a completed learning session for a learner. Updates the learner's real-time difficulty adaptation."),
		mcp.WithString("user_id",
			mcp.Description("Learner identifier"),
			mcp.Required(),
		),
		mcp.WithString("content_id",
			mcp.Description("Content item the session was on"),
			mcp.Required(),
		),
		mcp.WithNumber("duration",
			mcp.Description("Session duration in minutes"),
		),
		mcp.WithBoolean("completed",
			mcp.Description("Whether the learner completed the session"),
		),
		mcp.WithNumber("total_questions",
			mcp.Description("Number of questions asked"),
		),
		mcp.WithNumber("correct_answers",
			mcp.Description("Number answered correctly"),
		),
		mcp.WithNumber("items_completed",
			mcp.Description("Number of items worked through"),
		),
		mcp.WithNumber("difficulty_level",
			mcp.Description("Difficulty the session was presented at (1-10)"),
		),
	), s.mcpHandle(s.handleRecordSession))

	s.mcpServer.AddTool(mcp.NewTool("sage_record_indicators",
		mcp.WithDescription("Record behavioral observations (engagement, completion, time spent per content type) and refresh the learner's VARK style profile."),
		mcp.WithString("user_id",
			mcp.Description("Learner identifier"),
			mcp.Required(),
		),
		mcp.WithArray("indicators",
			mcp.Description("Observations: objects with action, content_type (visual|auditory|reading|kinesthetic), engagement_level (0-100), completion_rate (0-100), time_spent (seconds)"),
			mcp.Required(),
		),
	), s.mcpHandle(s.handleRecordIndicators))

	s.mcpServer.AddTool(mcp.NewTool("sage_review_content",
		mcp.WithDescription("Apply a quality-graded review (0-5) to a learner's card for a content item. Creates the card on first review. Returns the new interval and ease factor."),
		mcp.WithString("user_id",
			mcp.Description("Learner identifier"),
			mcp.Required(),
		),
		mcp.WithString("content_id",
			mcp.Description("Content item or session ref (S1, S2) from a recommendation"),
			mcp.Required(),
		),
		mcp.WithNumber("quality",
			mcp.Description("Review quality 0-5; below 3 counts as a failure"),
			mcp.Required(),
		),
		mcp.WithNumber("response_time",
			mcp.Description("Response time in seconds"),
		),
	), s.mcpHandle(s.handleReviewContent))

	s.mcpServer.AddTool(mcp.NewTool("sage_study_schedule",
		mcp.WithDescription("Build a prioritized review plan for the learner that fits the given time budget. Most overdue cards come first."),
		mcp.WithString("user_id",
			mcp.Description("Learner identifier"),
			mcp.Required(),
		),
		mcp.WithNumber("minutes",
			mcp.Description("Minutes available for study (default: 30)"),
		),
	), s.mcpHandle(s.handleStudySchedule))

	s.mcpServer.AddTool(mcp.NewTool("sage_recommend",
		mcp.WithDescription("Get diversified content recommendations for a learner. Returns items with session refs (S1, S2, ...) usable in sage_review_content."),
		mcp.WithString("user_id",
			mcp.Description("Learner identifier"),
			mcp.Required(),
		),
		mcp.WithNumber("max",
			mcp.Description("Maximum number of recommendations (default: 5)"),
		),
		mcp.WithNumber("max_duration",
			mcp.Description("Skip content estimated to take longer than this many minutes"),
		),
		mcp.WithArray("topics",
			mcp.Description("Topic goals to steer recommendations toward"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("exclude",
			mcp.Description("Content IDs to exclude"),
			mcp.WithStringItems(),
		),
	), s.mcpHandle(s.handleRecommend))

	s.mcpServer.AddTool(mcp.NewTool("sage_performance",
		mcp.WithDescription("Analyze a learner's performance: accuracy, speed, consistency, retention and engagement scores, plus trend and anomalies."),
		mcp.WithString("user_id",
			mcp.Description("Learner identifier"),
			mcp.Required(),
		),
	), s.mcpHandle(s.handlePerformance))

	s.mcpServer.AddTool(mcp.NewTool("sage_stats",
		mcp.WithDescription("Get store statistics. This is a read-only operation."),
	), s.mcpHandle(s.handleStats))
}

type handlerFunc func(ctx context.Context, args map[string]any) (*ToolResult, error)

func (s *Server) mcpHandle(h handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return toMCPResult(result), nil
	}
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

// Internal handlers

func (s *Server) handleRecordSession(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}
	contentID, ok := args["content_id"].(string)
	if !ok || contentID == "" {
		return &ToolResult{Content: "content_id is required", IsError: true}, nil
	}

	session := sage.LearningSession{
		UserID:    userID,
		ContentID: contentID,
	}
	if v, ok := args["duration"].(float64); ok {
		session.Duration = v
	}
	if v, ok := args["completed"].(bool); ok {
		session.Completed = v
	}
	if v, ok := args["total_questions"].(float64); ok {
		session.TotalQuestions = int(v)
	}
	if v, ok := args["correct_answers"].(float64); ok {
		session.CorrectAnswers = int(v)
	}
	if v, ok := args["items_completed"].(float64); ok {
		session.ItemsCompleted = int(v)
	}
	if v, ok := args["difficulty_level"].(float64); ok {
		session.DifficultyLevel = v
	}

	stored, err := s.client.RecordSession(ctx, session)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("record session failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: fmt.Sprintf("Recorded session [%s]:\n  Content: %s\n  Accuracy: %.0f%%\n  Duration: %.0f min",
		stored.ID, stored.ContentID, stored.Accuracy()*100, stored.Duration)}, nil
}

func (s *Server) handleRecordIndicators(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	raw, ok := args["indicators"].([]any)
	if !ok || len(raw) == 0 {
		return &ToolResult{Content: "indicators is required", IsError: true}, nil
	}

	indicators := make([]sage.BehavioralIndicator, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return &ToolResult{Content: "each indicator must be an object", IsError: true}, nil
		}
		ind := sage.BehavioralIndicator{}
		if v, ok := obj["action"].(string); ok {
			ind.Action = v
		}
		if v, ok := obj["content_type"].(string); ok {
			ind.ContentType = sage.ContentType(v)
		}
		if v, ok := obj["engagement_level"].(float64); ok {
			ind.EngagementLevel = v
		}
		if v, ok := obj["completion_rate"].(float64); ok {
			ind.CompletionRate = v
		}
		if v, ok := obj["time_spent"].(float64); ok {
			ind.TimeSpent = v
		}
		indicators = append(indicators, ind)
	}

	profile, err := s.client.RecordIndicators(ctx, userID, indicators)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("record indicators failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatProfile(profile)}, nil
}

func (s *Server) handleReviewContent(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}
	contentRef, ok := args["content_id"].(string)
	if !ok || contentRef == "" {
		return &ToolResult{Content: "content_id is required", IsError: true}, nil
	}
	quality, ok := args["quality"].(float64)
	if !ok {
		return &ToolResult{Content: "quality is required", IsError: true}, nil
	}

	// Session refs from recommendations resolve to content IDs
	contentID := contentRef
	if resolved, ok := s.client.ResolveContentRef(contentRef); ok {
		contentID = resolved
	}

	in := sage.ReviewInput{Quality: int(quality)}
	if v, ok := args["response_time"].(float64); ok {
		in.ResponseTime = v
	}

	card, err := s.client.ReviewContent(ctx, userID, contentID, in)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("review failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: fmt.Sprintf("Reviewed %s:\n  Quality: %d\n  Next review: %s (in %d day(s))\n  Ease: %.2f  Repetitions: %d",
		card.ContentID, in.Quality, card.NextReviewDate.Format("2006-01-02"), card.Interval, card.EaseFactor, card.Repetitions)}, nil
}

func (s *Server) handleStudySchedule(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	minutes := 30.0
	if v, ok := args["minutes"].(float64); ok {
		minutes = v
	}

	schedule, err := s.client.StudySchedule(ctx, userID, minutes, time.Now().UTC())
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("schedule failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatSchedule(schedule)}, nil
}

func (s *Server) handleRecommend(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	rctx := sage.RecommendationContext{
		UserID:      userID,
		Constraints: sage.RecommendationConstraints{MaxRecommendations: 5},
	}
	if v, ok := args["max"].(float64); ok && v > 0 {
		rctx.Constraints.MaxRecommendations = int(v)
	}
	if v, ok := args["max_duration"].(float64); ok {
		rctx.Preferences.MaxDuration = v
	}
	rctx.Preferences.Topics = toStringSlice(args["topics"])
	rctx.Constraints.ExcludeContentIDs = toStringSlice(args["exclude"])

	result, err := s.client.Recommend(ctx, userID, rctx)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("recommend failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatRecommendations(result)}, nil
}

func (s *Server) handlePerformance(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	metrics, err := s.client.Performance(ctx, userID)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("performance failed: %v", err), IsError: true}, nil
	}
	patterns, err := s.client.Patterns(ctx, userID)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("patterns failed: %v", err), IsError: true}, nil
	}
	anomalies, err := s.client.Anomalies(ctx, userID)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("anomalies failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatPerformance(metrics, patterns, anomalies)}, nil
}

func (s *Server) handleStats(ctx context.Context, args map[string]any) (*ToolResult, error) {
	stats, err := s.client.Stats()
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("stats failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: fmt.Sprintf(
		"Store statistics:\n  Profiles: %d\n  Sessions: %d\n  Cards: %d\n  Reviews: %d\n  Content items: %d\n  Indicators: %d\n  Schema version: %s",
		stats.Profiles, stats.Sessions, stats.Cards, stats.Reviews, stats.ContentItems, stats.Indicators, stats.SchemaVersion)}, nil
}

// Formatting functions

func formatProfile(p *sage.LearningProfile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile for %s:\n", p.UserID))
	if p.IsMultimodal {
		sb.WriteString("  Multimodal learner\n")
	} else if p.DominantStyle != "" {
		sb.WriteString(fmt.Sprintf("  Dominant style: %s\n", p.DominantStyle))
	} else {
		sb.WriteString("  No dominant style yet\n")
	}
	for _, score := range p.Styles {
		sb.WriteString(fmt.Sprintf("  %-12s score %.1f (confidence %.2f)\n", score.Type, score.Score, score.Confidence))
	}
	sb.WriteString(fmt.Sprintf("  Adaptation level: %.0f", p.AdaptationLevel))
	return sb.String()
}

func formatSchedule(schedule *sage.StudySchedule) string {
	if schedule.DueCount == 0 {
		return "No cards due for review."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Study plan: %d of %d due card(s), ~%.0f of %.0f minutes\n\n",
		len(schedule.Cards), schedule.DueCount, schedule.EstimatedMinutes, schedule.MinutesAvailable))
	for i, entry := range schedule.Cards {
		sb.WriteString(fmt.Sprintf("%d. %s (%.1f day(s) overdue, ~%.1f min)\n",
			i+1, entry.Card.ContentID, entry.OverdueDays, entry.EstimatedMinutes))
	}
	return sb.String()
}

func formatRecommendations(result *sage.RecommendationResult) string {
	if len(result.Content) == 0 {
		return "No matching content found."
	}

	// Build reverse map from content ID to session ref
	idToRef := make(map[string]string)
	for ref, id := range result.SessionRefs {
		idToRef[id] = ref
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recommended %d item(s):\n\n", len(result.Content)))
	for _, item := range result.Content {
		ref := idToRef[item.ID]
		if ref == "" {
			ref = item.ID
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n", ref, item.Concept))
		if item.Topic != "" {
			sb.WriteString(fmt.Sprintf("    Topic: %s\n", item.Topic))
		}
		sb.WriteString(fmt.Sprintf("    Difficulty: %.0f  Duration: ~%.0f min\n\n", item.Difficulty, item.Metadata.EstimatedDuration))
	}
	sb.WriteString("Use sage_review_content with session refs (S1, S2, ...) after studying.")
	return sb.String()
}

func formatPerformance(m *sage.PerformanceMetrics, p *sage.LearningPatterns, anomalies []sage.Anomaly) string {
	var sb strings.Builder
	sb.WriteString("Performance:\n")
	sb.WriteString(fmt.Sprintf("  Accuracy:    %.1f\n", m.Accuracy))
	sb.WriteString(fmt.Sprintf("  Speed:       %.1f\n", m.Speed))
	sb.WriteString(fmt.Sprintf("  Consistency: %.1f\n", m.Consistency))
	sb.WriteString(fmt.Sprintf("  Retention:   %.1f\n", m.Retention))
	sb.WriteString(fmt.Sprintf("  Engagement:  %.1f\n", m.Engagement))
	sb.WriteString(fmt.Sprintf("  Sessions analyzed: %d (%d skipped)\n", m.SessionsUsed, m.SessionsSkipped))
	sb.WriteString(fmt.Sprintf("\nTrend: %s\n", p.Trend))
	if len(anomalies) > 0 {
		sb.WriteString(fmt.Sprintf("\nAnomalies (%d):\n", len(anomalies)))
		for _, a := range anomalies {
			sb.WriteString(fmt.Sprintf("  - session %s: %s\n", a.SessionID, a.Reason))
		}
	}
	return sb.String()
}

// toStringSlice converts various array types to []string.
// Handles []any, []string, and nil.
func toStringSlice(v any) []string {
	if v == nil {
		return nil
	}

	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		result := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}
