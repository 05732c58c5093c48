package engine

import (
	"errors"
	"testing"
)

func TestResolveInputs_NoPlaceholders(t *testing.T) {
	input := map[string]any{"url": "https://example.com", "retries": 3}

	resolved, err := ResolveInputs("n1", input, map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved["url"] != "https://example.com" {
		t.Errorf("url = %v", resolved["url"])
	}
	if resolved["retries"] != 3 {
		t.Error("non-string value should pass through unchanged")
	}
}

func TestResolveInputs_SinglePlaceholder(t *testing.T) {
	outputs := map[string]string{"fetch.body": "hello"}

	resolved, err := ResolveInputs("n1", map[string]any{"message": "{{fetch.body}}"}, outputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["message"] != "hello" {
		t.Errorf("message = %v, want hello", resolved["message"])
	}
}

func TestResolveInputs_MultiplePlaceholdersInOneField(t *testing.T) {
	outputs := map[string]string{
		"check.code": "200",
		"check.url":  "https://example.com",
	}

	resolved, err := ResolveInputs("n1", map[string]any{
		"message": "{{check.url}} returned {{check.code}} ({{check.code}})",
	}, outputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://example.com returned 200 (200)"
	if resolved["message"] != want {
		t.Errorf("message = %q, want %q", resolved["message"], want)
	}
}

func TestResolveInputs_Idempotent(t *testing.T) {
	outputs := map[string]string{"a.x": "value"}
	input := map[string]any{"field": "{{a.x}} plain tail"}

	once, err := ResolveInputs("n1", input, outputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := ResolveInputs("n1", map[string]any{"field": once["field"]}, outputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once["field"] != twice["field"] {
		t.Errorf("resolution not idempotent: %q vs %q", once["field"], twice["field"])
	}
}

func TestResolveInputs_MissingKeyIsFatal(t *testing.T) {
	_, err := ResolveInputs("n1", map[string]any{"field": "prefix {{c.z}} suffix"}, map[string]string{})

	var unresolved *UnresolvedReferenceError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedReferenceError, got %v", err)
	}
	if unresolved.NodeID != "n1" {
		t.Errorf("NodeID = %s, want n1", unresolved.NodeID)
	}
	if unresolved.Placeholder != "{{c.z}}" {
		t.Errorf("Placeholder = %q, want {{c.z}}", unresolved.Placeholder)
	}
	if ErrorKind(err) != KindUnresolvedReference {
		t.Errorf("kind = %s, want %s", ErrorKind(err), KindUnresolvedReference)
	}
}

func TestResolveInputs_MalformedTokenPassesThrough(t *testing.T) {
	// Tokens that do not match {{id.key}} are left as literal text.
	cases := []string{"{{no-dot}}", "{{a.b.c}}", "{ {a.x} }", "{{a.}}", "{{.x}}"}

	for _, c := range cases {
		resolved, err := ResolveInputs("n1", map[string]any{"f": c}, map[string]string{})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c, err)
		}
		if resolved["f"] != c {
			t.Errorf("%q: got %q, want unchanged", c, resolved["f"])
		}
	}
}

func TestOutputKey(t *testing.T) {
	if OutputKey("fetch", "body") != "fetch.body" {
		t.Errorf("OutputKey = %s", OutputKey("fetch", "body"))
	}
}
