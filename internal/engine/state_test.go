package engine

import (
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

func branchEdge(source, target, handle string) domain.Edge {
	return domain.Edge{Source: source, Target: target, SourceHandle: handle}
}

func TestState_PruneKeepsTakenBranch(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("cond"), node("a"), node("b")},
		Edges: []domain.Edge{
			branchEdge("cond", "a", domain.HandleTrue),
			branchEdge("cond", "b", domain.HandleFalse),
		},
	})
	state.pop() // cond executed

	removed := state.Prune("cond", true)

	if len(removed) != 1 || removed[0] != "b" {
		t.Fatalf("removed = %v, want [b]", removed)
	}
	got := queueIDs(state)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("queue = %v, want [a]", got)
	}
}

func TestState_PruneFalseBranch(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("cond"), node("a"), node("b")},
		Edges: []domain.Edge{
			branchEdge("cond", "a", domain.HandleTrue),
			branchEdge("cond", "b", domain.HandleFalse),
		},
	})
	state.pop()

	state.Prune("cond", false)

	got := queueIDs(state)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("queue = %v, want [b]", got)
	}
}

func TestState_PruneUnlabeledEdge(t *testing.T) {
	// An unlabeled edge from a branch node never matches the taken
	// handle, so its target is pruned too.
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("cond"), node("a"), node("plain")},
		Edges: []domain.Edge{
			branchEdge("cond", "a", domain.HandleTrue),
			edge("cond", "plain"),
		},
	})
	state.pop()

	removed := state.Prune("cond", true)

	if len(removed) != 1 || removed[0] != "plain" {
		t.Fatalf("removed = %v, want [plain]", removed)
	}
}

func TestState_PruneIsSingleHop(t *testing.T) {
	// c depends only on the pruned b, but pruning does not cascade:
	// c stays in the queue.
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("cond"), node("a"), node("b"), node("c")},
		Edges: []domain.Edge{
			branchEdge("cond", "a", domain.HandleTrue),
			branchEdge("cond", "b", domain.HandleFalse),
			edge("b", "c"),
		},
	})
	state.pop()

	state.Prune("cond", true)

	got := queueIDs(state)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("queue = %v, want [a c]", got)
	}
}

func TestState_PrunePreservesOrder(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("cond"), node("x"), node("drop"), node("y")},
		Edges: []domain.Edge{
			branchEdge("cond", "drop", domain.HandleFalse),
			edge("cond", "x"),
			edge("cond", "y"),
		},
	})
	state.pop()
	// Queue order before pruning: x, drop, y (declaration order).

	// Take the false branch: drop stays, x and y are unlabeled and go.
	removed := state.Prune("cond", false)
	if len(removed) != 2 {
		t.Fatalf("removed = %v, want [x y]", removed)
	}

	got := queueIDs(state)
	if len(got) != 1 || got[0] != "drop" {
		t.Errorf("queue = %v, want [drop]", got)
	}
}

func TestState_PruneOtherNodesUntouched(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("cond"), node("a"), node("other")},
		Edges: []domain.Edge{
			branchEdge("cond", "a", domain.HandleTrue),
		},
	})
	state.pop()

	removed := state.Prune("cond", true)
	if removed != nil {
		t.Fatalf("removed = %v, want nil", removed)
	}
	if state.Remaining() != 2 {
		t.Errorf("remaining = %d, want 2", state.Remaining())
	}
}

func TestState_MergeUsesQualifiedKeys(t *testing.T) {
	state := &State{Outputs: map[string]string{}}

	state.merge("fetch", map[string]string{"body": "hi", "code": "200"})

	if state.Outputs["fetch.body"] != "hi" {
		t.Errorf("fetch.body = %q", state.Outputs["fetch.body"])
	}
	if state.Outputs["fetch.code"] != "200" {
		t.Errorf("fetch.code = %q", state.Outputs["fetch.code"])
	}
}

func TestState_MarshalRoundTrip(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("a"), node("b")},
		Edges: []domain.Edge{edge("a", "b")},
	})
	state.Outputs["a.text"] = "hello"

	data, err := state.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.WorkflowID != state.WorkflowID {
		t.Errorf("WorkflowID = %s", restored.WorkflowID)
	}
	if restored.RunID != state.RunID {
		t.Errorf("RunID = %s", restored.RunID)
	}
	if restored.Status != StatusPending {
		t.Errorf("Status = %s", restored.Status)
	}
	if restored.Outputs["a.text"] != "hello" {
		t.Error("outputs should survive the round trip")
	}
	if len(restored.Queue) != 2 || restored.Queue[0].ID != "a" {
		t.Errorf("queue = %v", queueIDs(restored))
	}
	if len(restored.Edges) != 1 {
		t.Errorf("edges = %v", restored.Edges)
	}
}

func TestUnmarshalState_NilOutputsInitialized(t *testing.T) {
	restored, err := UnmarshalState([]byte(`{"workflowId":"wf","status":"PENDING"}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Outputs == nil {
		t.Error("Outputs should be initialized")
	}
}

func TestUnmarshalState_Malformed(t *testing.T) {
	if _, err := UnmarshalState([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusRunning, StatusMerging} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusTerminal, StatusFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
