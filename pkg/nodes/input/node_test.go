package input

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/raglinehq/ragline/pkg/models"
)

func TestNewInputNode_Defaults(t *testing.T) {
	node, err := NewInputNode("test-input", nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	if node.ID() != "test-input" {
		t.Errorf("Expected ID 'test-input', got: %s", node.ID())
	}

	if node.Kind() != models.NodeKindInput {
		t.Errorf("Expected kind 'input', got: %s", node.Kind())
	}

	if node.maxLength != DefaultMaxLength {
		t.Errorf("Expected default max length %d, got: %d", DefaultMaxLength, node.maxLength)
	}
}

func TestNewInputNode_IgnoresNonPositiveMaxLength(t *testing.T) {
	node, err := NewInputNode("test-input", map[string]any{"max_length": -1})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	if node.maxLength != DefaultMaxLength {
		t.Errorf("Expected fallback to default max length, got: %d", node.maxLength)
	}
}

func TestInputNode_Execute_Passthrough(t *testing.T) {
	node, err := NewInputNode("test-input", nil)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result, err := node.Execute(context.Background(), "hello pipeline")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("Expected map output, got: %T", result)
	}

	if output["text"] != "hello pipeline" {
		t.Errorf("Expected text to pass through, got: %v", output["text"])
	}

	if output["truncated"] != false {
		t.Errorf("Expected truncated=false, got: %v", output["truncated"])
	}

	if output["original_length"] != len("hello pipeline") {
		t.Errorf("Expected original_length %d, got: %v", len("hello pipeline"), output["original_length"])
	}

	if output["processed_at"] == "" {
		t.Error("Expected processed_at timestamp")
	}
}

func TestInputNode_Execute_Truncates(t *testing.T) {
	node, err := NewInputNode("test-input", map[string]any{"max_length": 10})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	long := strings.Repeat("a", 50)

	result, err := node.Execute(context.Background(), long)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output := result.(map[string]any)

	text := output["text"].(string)
	if !strings.HasSuffix(text, TruncationMarker) {
		t.Errorf("Expected truncation marker suffix, got: %q", text)
	}

	if !strings.HasPrefix(text, strings.Repeat("a", 10)) {
		t.Errorf("Expected first 10 characters kept, got: %q", text)
	}

	if output["truncated"] != true {
		t.Errorf("Expected truncated=true, got: %v", output["truncated"])
	}

	if output["original_length"] != 50 {
		t.Errorf("Expected original_length 50, got: %v", output["original_length"])
	}
}

func TestInputNode_Execute_TruncatesOnRuneBoundary(t *testing.T) {
	// "héllo" is 6 bytes: the cut at 2 lands inside the two-byte é and must
	// back off to keep the output valid UTF-8.
	node, err := NewInputNode("test-input", map[string]any{"max_length": 2})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result, err := node.Execute(context.Background(), "héllo")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output := result.(map[string]any)

	text := output["text"].(string)
	if !utf8.ValidString(text) {
		t.Errorf("Expected valid UTF-8 output, got: %q", text)
	}

	if text != "h"+TruncationMarker {
		t.Errorf("Expected cut before the split rune, got: %q", text)
	}

	if output["truncated"] != true {
		t.Errorf("Expected truncated=true, got: %v", output["truncated"])
	}
}

func TestInputNode_Execute_ExactBoundaryNotTruncated(t *testing.T) {
	node, err := NewInputNode("test-input", map[string]any{"max_length": 5})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result, err := node.Execute(context.Background(), "12345")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output := result.(map[string]any)
	if output["truncated"] != false {
		t.Errorf("Expected no truncation at exact boundary, got: %v", output["truncated"])
	}

	if output["text"] != "12345" {
		t.Errorf("Expected unchanged text, got: %v", output["text"])
	}
}
