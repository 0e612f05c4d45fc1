package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperengineering/revise"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with Revise tools.
type Server struct {
	client    *revise.Client
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

// NewServer creates a new MCP server with Revise tools registered.
func NewServer(client *revise.Client) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"revise",
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
		{Name: "revise_record_outcome", Description: "Record a finished review and compute the next review date"},
		{Name: "revise_due_reviews", Description: "List a user's due review recommendations"},
		{Name: "revise_weak_topics", Description: "List a user's weakest topics from recent attempt history"},
		{Name: "revise_user_stats", Description: "Summarize a user's review activity and retention"},
		{Name: "revise_run_batch", Description: "Run one scheduling cycle over all recently active users"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "revise_record_outcome":
		return s.handleRecordOutcome(ctx, args)
	case "revise_due_reviews":
		return s.handleDueReviews(ctx, args)
	case "revise_weak_topics":
		return s.handleWeakTopics(ctx, args)
	case "revise_user_stats":
		return s.handleUserStats(ctx, args)
	case "revise_run_batch":
		return s.handleRunBatch(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	// revise_record_outcome
	s.mcpServer.AddTool(mcp.NewTool("revise_record_outcome",
		mcp.WithDescription("Record a finished review rated 1-5 and compute the item's next review date. Call this immediately after the learner completes an item."),
		mcp.WithString("user_id",
			mcp.Description("The learner's user ID"),
			mcp.Required(),
		),
		mcp.WithString("item_id",
			mcp.Description("The reviewed item's ID"),
			mcp.Required(),
		),
		mcp.WithNumber("rating",
			mcp.Description("Performance rating 1-5 (below 3 counts as a lapse)"),
			mcp.Required(),
		),
	), s.mcpHandleRecordOutcome)

	// revise_due_reviews
	s.mcpServer.AddTool(mcp.NewTool("revise_due_reviews",
		mcp.WithDescription("List a user's due review recommendations, earliest due first with higher priority breaking ties."),
		mcp.WithString("user_id",
			mcp.Description("The learner's user ID"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of recommendations to return (default: 10)"),
		),
	), s.mcpHandleDueReviews)

	// revise_weak_topics
	s.mcpServer.AddTool(mcp.NewTool("revise_weak_topics",
		mcp.WithDescription("List a user's weakest topics from the recent attempt window, highest error rate first."),
		mcp.WithString("user_id",
			mcp.Description("The learner's user ID"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of topics to return (default: 5)"),
		),
	), s.mcpHandleWeakTopics)

	// revise_user_stats
	s.mcpServer.AddTool(mcp.NewTool("revise_user_stats",
		mcp.WithDescription("Summarize a user's review activity: total and due reviews, average performance, and 30-day retention rate. Read-only."),
		mcp.WithString("user_id",
			mcp.Description("The learner's user ID"),
			mcp.Required(),
		),
	), s.mcpHandleUserStats)

	// revise_run_batch
	s.mcpServer.AddTool(mcp.NewTool("revise_run_batch",
		mcp.WithDescription("Run one scheduling cycle over all recently active users, writing weak-topic and spaced-repetition recommendations into the queue."),
	), s.mcpHandleRunBatch)
}

// MCP handlers that wrap internal handlers

func (s *Server) mcpHandleRecordOutcome(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleRecordOutcome(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleDueReviews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleDueReviews(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleWeakTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleWeakTopics(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleUserStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleUserStats(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleRunBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleRunBatch(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
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

func (s *Server) handleRecordOutcome(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}
	itemID, ok := args["item_id"].(string)
	if !ok || itemID == "" {
		return &ToolResult{Content: "item_id is required", IsError: true}, nil
	}
	rating, ok := args["rating"].(float64)
	if !ok {
		return &ToolResult{Content: "rating is required", IsError: true}, nil
	}

	state, err := s.client.RecordOutcome(ctx, userID, itemID, int(rating))
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("record outcome failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatOutcomeResult(state)}, nil
}

func (s *Server) handleDueReviews(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	limit := 0
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	recs, err := s.client.DueFor(userID, limit)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("due reviews failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatDueReviews(recs)}, nil
}

func (s *Server) handleWeakTopics(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	limit := 0
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	topics, err := s.client.TopWeakTopics(userID, limit)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("weak topics failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatWeakTopics(topics)}, nil
}

func (s *Server) handleUserStats(ctx context.Context, args map[string]any) (*ToolResult, error) {
	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return &ToolResult{Content: "user_id is required", IsError: true}, nil
	}

	stats, err := s.client.UserStats(userID)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("user stats failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatUserStats(userID, stats)}, nil
}

func (s *Server) handleRunBatch(ctx context.Context, args map[string]any) (*ToolResult, error) {
	result, err := s.client.RunBatch(ctx)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("batch run failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: fmt.Sprintf(
		"Batch complete: %d users processed, %d failed, %d recommendations enqueued",
		result.UsersProcessed, result.UsersFailed, result.Enqueued)}, nil
}

// Formatting functions

func formatOutcomeResult(st *revise.ReviewState) string {
	return fmt.Sprintf("Recorded outcome for %s/%s:\n  Rating: %d\n  Repetitions: %d\n  Easiness: %.2f\n  Next review: %s (in %d days)",
		st.UserID, st.ItemID, st.LastRating, st.RepetitionCount, st.EasinessFactor,
		st.NextReviewAt.Format("2006-01-02"), st.IntervalDays)
}

func formatDueReviews(recs []revise.Recommendation) string {
	if len(recs) == 0 {
		return "No reviews due."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d reviews due:\n\n", len(recs)))
	for i, rec := range recs {
		sb.WriteString(fmt.Sprintf("%d. %s (priority %d, %s)\n", i+1, rec.ItemID, rec.Priority, rec.Reason))
		sb.WriteString(fmt.Sprintf("   Due since: %s\n", rec.NextReviewAt.Format("2006-01-02")))
	}
	return sb.String()
}

func formatWeakTopics(topics []revise.WeakTopic) string {
	if len(topics) == 0 {
		return "No weak topics found in the recent attempt window."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d weak topics:\n\n", len(topics)))
	for i, wt := range topics {
		sb.WriteString(fmt.Sprintf("%d. %s: %.0f%% error rate over %d attempts\n",
			i+1, wt.Topic, wt.ErrorRate*100, wt.AttemptsCount))
	}
	return sb.String()
}

func formatUserStats(userID string, stats *revise.UserStats) string {
	return fmt.Sprintf("Stats for %s:\n  Total reviews: %d\n  Due reviews: %d\n  Average performance: %.2f\n  30-day retention: %.1f%%",
		userID, stats.TotalReviews, stats.DueReviews, stats.AveragePerformance, stats.RetentionRate)
}
