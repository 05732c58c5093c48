package blocks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- Registry Tests ---

func TestRegistry_DefaultHasAllBlocks(t *testing.T) {
	r := DefaultRegistry()

	for _, blockType := range []string{
		BlockTypeManualTrigger,
		BlockTypeTextInput,
		BlockTypeIfCondition,
		BlockTypeHTTPRequest,
		BlockTypeURLStatusCheck,
		BlockTypeSlackWebhook,
	} {
		if !r.Has(blockType) {
			t.Errorf("default registry should have %s", blockType)
		}
	}
	if r.Count() != 6 {
		t.Errorf("count = %d, want 6", r.Count())
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("NoSuchBlock")
	if !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTextInput())
	r.Register(NewIfCondition())

	types := r.Types()
	if len(types) != 2 || types[0] != BlockTypeIfCondition || types[1] != BlockTypeTextInput {
		t.Errorf("types = %v, want sorted [IfCondition TextInputWebhook]", types)
	}
}

// --- ManualTrigger Tests ---

func TestManualTrigger(t *testing.T) {
	b := NewManualTrigger()

	result, err := b.Run(context.Background(), &Request{NodeID: "start"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Outputs) != 0 {
		t.Errorf("outputs = %v, want empty", result.Outputs)
	}
	if result.Branch != nil {
		t.Error("trigger is not a branch block")
	}
}

// --- TextInput Tests ---

func TestTextInput(t *testing.T) {
	b := NewTextInput()

	result, err := b.Run(context.Background(), &Request{
		NodeID: "greeting",
		Input:  map[string]any{"text": "hello world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["text"] != "hello world" {
		t.Errorf("text = %q", result.Outputs["text"])
	}
}

// --- IfCondition Tests ---

func TestIfCondition(t *testing.T) {
	tests := []struct {
		name     string
		one, two string
		op       string
		want     bool
	}{
		{"numeric equal", "200", "200", "==", true},
		{"numeric not equal", "200", "404", "==", false},
		{"numeric less", "3", "10", "<", true},
		// "10" < "3" lexicographically, but both sides parse as
		// numbers so the comparison is numeric.
		{"numeric beats lexicographic", "10", "3", "<", false},
		{"numeric greater or equal", "5", "5", ">=", true},
		{"string equal", "ok", "ok", "==", true},
		{"string not equal op", "ok", "fail", "!=", true},
		{"string less", "abc", "abd", "<", true},
	}

	b := NewIfCondition()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := b.Run(context.Background(), &Request{
				NodeID: "cond",
				Input: map[string]any{
					"valueOne": tt.one,
					"operator": tt.op,
					"valueTwo": tt.two,
				},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Branch == nil {
				t.Fatal("IfCondition must set Branch")
			}
			if *result.Branch != tt.want {
				t.Errorf("branch = %v, want %v", *result.Branch, tt.want)
			}
			wantResult := "false"
			if tt.want {
				wantResult = "true"
			}
			if result.Outputs["result"] != wantResult {
				t.Errorf("result output = %q, want %q", result.Outputs["result"], wantResult)
			}
		})
	}
}

func TestIfCondition_UnknownOperator(t *testing.T) {
	b := NewIfCondition()

	_, err := b.Run(context.Background(), &Request{
		NodeID: "cond",
		Input:  map[string]any{"valueOne": "1", "operator": "~=", "valueTwo": "1"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// --- HTTPRequest Tests ---

func TestHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))
	defer srv.Close()

	b := NewHTTPRequest()
	result, err := b.Run(context.Background(), &Request{
		NodeID: "call",
		Input: map[string]any{
			"method":  "post",
			"url":     srv.URL,
			"headers": map[string]any{"X-Token": "secret"},
			"body":    `{"k":"v"}`,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["status_code"] != "201" {
		t.Errorf("status_code = %q, want 201", result.Outputs["status_code"])
	}
	if result.Outputs["body"] != "created" {
		t.Errorf("body = %q", result.Outputs["body"])
	}
}

func TestHTTPRequest_MissingURL(t *testing.T) {
	b := NewHTTPRequest()

	_, err := b.Run(context.Background(), &Request{NodeID: "call", Input: map[string]any{}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// --- URLStatusCheck Tests ---

func TestURLStatusCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewURLStatusCheck()

	t.Run("matching code takes true branch", func(t *testing.T) {
		result, err := b.Run(context.Background(), &Request{
			NodeID: "check",
			Input:  map[string]any{"url": srv.URL, "code": 200},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Branch == nil || !*result.Branch {
			t.Error("expected true branch")
		}
		if result.Outputs["code"] != "200" {
			t.Errorf("code = %q", result.Outputs["code"])
		}
	})

	t.Run("mismatched code takes false branch", func(t *testing.T) {
		result, err := b.Run(context.Background(), &Request{
			NodeID: "check",
			Input:  map[string]any{"url": srv.URL, "code": 404},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Branch == nil || *result.Branch {
			t.Error("expected false branch")
		}
	})

	t.Run("unreachable host takes false branch", func(t *testing.T) {
		result, err := b.Run(context.Background(), &Request{
			NodeID: "check",
			Input:  map[string]any{"url": "http://127.0.0.1:1"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Branch == nil || *result.Branch {
			t.Error("expected false branch for unreachable host")
		}
		if result.Outputs["code"] != "0" {
			t.Errorf("code = %q, want 0", result.Outputs["code"])
		}
	})
}

// --- SlackWebhook Tests ---

func TestSlackWebhook(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewSlackWebhook()
	result, err := b.Run(context.Background(), &Request{
		NodeID: "notify",
		Input:  map[string]any{"url": srv.URL, "message": "deploy ok"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["message"] != "deploy ok" {
		t.Errorf("message = %q", result.Outputs["message"])
	}
	if gotBody != `{"text":"deploy ok"}` {
		t.Errorf("posted body = %s", gotBody)
	}
}

func TestSlackWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	b := NewSlackWebhook()
	_, err := b.Run(context.Background(), &Request{
		NodeID: "notify",
		Input:  map[string]any{"url": srv.URL, "message": "x"},
	})
	if err == nil {
		t.Error("expected error for HTTP 403")
	}
}

// --- Input helper Tests ---

func TestInputHelpers(t *testing.T) {
	input := map[string]any{
		"s":    "text",
		"n":    float64(42),
		"nstr": "7",
		"b":    true,
		"bstr": "false",
		"m":    map[string]any{"k": "v", "skip": 1},
	}

	if InputString(input, "s") != "text" {
		t.Error("InputString")
	}
	if InputString(input, "missing") != "" {
		t.Error("InputString missing key")
	}
	if InputInt(input, "n") != 42 {
		t.Error("InputInt float64")
	}
	if InputInt(input, "nstr") != 7 {
		t.Error("InputInt string")
	}
	if !InputBool(input, "b", false) {
		t.Error("InputBool")
	}
	if InputBool(input, "bstr", true) {
		t.Error("InputBool string false")
	}
	if !InputBool(input, "missing", true) {
		t.Error("InputBool default")
	}
	m := InputMapString(input, "m")
	if m["k"] != "v" {
		t.Error("InputMapString")
	}
	if _, ok := m["skip"]; ok {
		t.Error("non-string map values should be dropped")
	}
}
