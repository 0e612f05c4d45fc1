package mcp_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/revise"
	revisemcp "github.com/hyperengineering/revise/mcp"
)

func newTestServer(t *testing.T) (*revisemcp.Server, *revise.Client) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := revise.New(revise.Config{DBPath: dbPath})
	if err != nil {
		t.Fatalf("revise.New() returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return revisemcp.NewServer(client), client
}

// =============================================================================
// Server Initialization Tests
// =============================================================================

// TestServer_NewServer tests that a server can be created with a valid client.
func TestServer_NewServer(t *testing.T) {
	server, _ := newTestServer(t)
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
}

// TestServer_ToolsList tests that all required tools are registered.
func TestServer_ToolsList(t *testing.T) {
	server, _ := newTestServer(t)
	tools := server.ListTools()

	expectedTools := []string{
		"revise_record_outcome",
		"revise_due_reviews",
		"revise_weak_topics",
		"revise_user_stats",
		"revise_run_batch",
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("ListTools() returned %d tools, want %d", len(tools), len(expectedTools))
	}

	toolNames := make(map[string]bool)
	for _, tool := range tools {
		toolNames[tool.Name] = true
	}

	for _, expected := range expectedTools {
		if !toolNames[expected] {
			t.Errorf("Tool %q not found in registered tools", expected)
		}
	}
}

// =============================================================================
// Tool Execution Tests
// =============================================================================

// TestTool_RecordOutcome_Success tests recording a review outcome.
func TestTool_RecordOutcome_Success(t *testing.T) {
	server, client := newTestServer(t)

	result, err := server.CallTool(context.Background(), "revise_record_outcome", map[string]any{
		"user_id": "u1",
		"item_id": "item-1",
		"rating":  float64(4),
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "u1/item-1") {
		t.Errorf("result does not mention the pair: %s", result.Content)
	}

	state, err := client.ReviewState("u1", "item-1")
	if err != nil {
		t.Fatalf("ReviewState() returned error: %v", err)
	}
	if state.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1 for first review", state.IntervalDays)
	}
}

// TestTool_RecordOutcome_MissingArgs tests argument validation.
func TestTool_RecordOutcome_MissingArgs(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing user_id", map[string]any{"item_id": "item-1", "rating": float64(4)}},
		{"missing item_id", map[string]any{"user_id": "u1", "rating": float64(4)}},
		{"missing rating", map[string]any{"user_id": "u1", "item_id": "item-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.CallTool(ctx, "revise_record_outcome", tt.args)
			if err != nil {
				t.Fatalf("CallTool() returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected error result, got: %s", result.Content)
			}
		})
	}
}

// TestTool_RecordOutcome_InvalidRating tests rating range enforcement.
func TestTool_RecordOutcome_InvalidRating(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "revise_record_outcome", map[string]any{
		"user_id": "u1",
		"item_id": "item-1",
		"rating":  float64(9),
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if !result.IsError {
		t.Errorf("expected error result for rating 9, got: %s", result.Content)
	}
}

// TestTool_DueReviews_Empty tests the empty-queue message.
func TestTool_DueReviews_Empty(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "revise_due_reviews", map[string]any{
		"user_id": "u1",
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "No reviews due") {
		t.Errorf("unexpected content: %s", result.Content)
	}
}

// TestTool_UserStats tests the stats summary output.
func TestTool_UserStats(t *testing.T) {
	server, client := newTestServer(t)

	if _, err := client.RecordOutcome(context.Background(), "u1", "item-1", 5); err != nil {
		t.Fatalf("RecordOutcome() returned error: %v", err)
	}

	result, err := server.CallTool(context.Background(), "revise_user_stats", map[string]any{
		"user_id": "u1",
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "Total reviews: 1") {
		t.Errorf("unexpected content: %s", result.Content)
	}
}

// TestTool_WeakTopics tests the weak-topic listing.
func TestTool_WeakTopics(t *testing.T) {
	server, client := newTestServer(t)
	recent := time.Now().UTC().Add(-time.Hour)

	if err := client.PutItem(revise.Item{ItemID: "alg-1", Topic: "algebra", Difficulty: 1}); err != nil {
		t.Fatalf("PutItem() returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		err := client.RecordAttempt(revise.AttemptRecord{
			UserID:      "u1",
			ItemID:      "alg-1",
			AttemptedAt: recent.Add(time.Duration(i) * time.Minute),
			IsCorrect:   false,
		})
		if err != nil {
			t.Fatalf("RecordAttempt() returned error: %v", err)
		}
	}

	result, err := server.CallTool(context.Background(), "revise_weak_topics", map[string]any{
		"user_id": "u1",
	})
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "algebra") {
		t.Errorf("expected algebra in output: %s", result.Content)
	}
}

// TestTool_RunBatch tests a full scheduling cycle through the tool surface.
func TestTool_RunBatch(t *testing.T) {
	server, client := newTestServer(t)
	recent := time.Now().UTC().Add(-time.Hour)

	if err := client.PutItem(revise.Item{ItemID: "alg-1", Topic: "algebra", Difficulty: 1}); err != nil {
		t.Fatalf("PutItem() returned error: %v", err)
	}
	err := client.RecordAttempt(revise.AttemptRecord{
		UserID:      "u1",
		ItemID:      "alg-1",
		AttemptedAt: recent,
		IsCorrect:   false,
	})
	if err != nil {
		t.Fatalf("RecordAttempt() returned error: %v", err)
	}

	result, err := server.CallTool(context.Background(), "revise_run_batch", nil)
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "1 users processed") {
		t.Errorf("unexpected content: %s", result.Content)
	}
}

// TestTool_Unknown tests the unknown-tool error path.
func TestTool_Unknown(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "revise_nonexistent", nil)
	if err != nil {
		t.Fatalf("CallTool() returned error: %v", err)
	}
	if !result.IsError {
		t.Errorf("expected error result, got: %s", result.Content)
	}
}
