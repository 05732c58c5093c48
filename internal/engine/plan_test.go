package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

func node(id string) domain.Node {
	return domain.Node{ID: id, Block: domain.Block{Type: "TextInputWebhook", Input: map[string]any{}}}
}

func edge(source, target string) domain.Edge {
	return domain.Edge{Source: source, Target: target}
}

func queueIDs(state *State) []string {
	ids := make([]string, 0, len(state.Queue))
	for _, n := range state.Queue {
		ids = append(ids, n.ID)
	}
	return ids
}

func planDef(t *testing.T, def domain.Definition) *State {
	t.Helper()
	state, err := Plan(PlanRequest{
		WorkflowID: "wf-1",
		UserID:     "user-1",
		RunID:      "run-1",
		Definition: def,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return state
}

func TestPlan_LinearChain(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("a"), node("b"), node("c")},
		Edges: []domain.Edge{edge("a", "b"), edge("b", "c")},
	})

	want := []string{"a", "b", "c"}
	got := queueIDs(state)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if state.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", state.Status)
	}
	if len(state.Outputs) != 0 {
		t.Error("outputs should start empty")
	}
}

func TestPlan_DiamondRespectsDependencies(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("a"), node("b"), node("c"), node("d")},
		Edges: []domain.Edge{edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d")},
	})

	pos := make(map[string]int)
	for i, id := range queueIDs(state) {
		pos[id] = i
	}
	for _, e := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}} {
		if pos[e[0]] >= pos[e[1]] {
			t.Errorf("%s should come before %s, got order %v", e[0], e[1], queueIDs(state))
		}
	}
}

func TestPlan_TieBreakByDeclarationOrder(t *testing.T) {
	// x and y are both ready after a; x is declared first.
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("a"), node("x"), node("y")},
		Edges: []domain.Edge{edge("a", "x"), edge("a", "y")},
	})

	got := queueIDs(state)
	want := []string{"a", "x", "y"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	def := domain.Definition{
		Nodes: []domain.Node{node("root"), node("m"), node("k"), node("z"), node("leaf")},
		Edges: []domain.Edge{
			edge("root", "m"), edge("root", "k"), edge("root", "z"),
			edge("m", "leaf"), edge("k", "leaf"), edge("z", "leaf"),
		},
	}

	first := queueIDs(planDef(t, def))
	for i := 0; i < 10; i++ {
		again := queueIDs(planDef(t, def))
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("plan not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestPlan_IsolatedNodesIncluded(t *testing.T) {
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{node("a"), node("lonely")},
	})
	if state.Remaining() != 2 {
		t.Errorf("remaining = %d, want 2", state.Remaining())
	}
}

func TestPlan_CycleRejected(t *testing.T) {
	_, err := Plan(PlanRequest{Definition: domain.Definition{
		Nodes: []domain.Node{node("a"), node("b"), node("c")},
		Edges: []domain.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
	}})

	if !errors.Is(err, ErrGraphNotAcyclic) {
		t.Fatalf("expected ErrGraphNotAcyclic, got %v", err)
	}
	if ErrorKind(err) != KindGraphNotAcyclic {
		t.Errorf("kind = %s, want %s", ErrorKind(err), KindGraphNotAcyclic)
	}
}

func TestPlan_SelfLoopRejected(t *testing.T) {
	_, err := Plan(PlanRequest{Definition: domain.Definition{
		Nodes: []domain.Node{node("a")},
		Edges: []domain.Edge{edge("a", "a")},
	}})
	if !errors.Is(err, ErrGraphNotAcyclic) {
		t.Fatalf("expected ErrGraphNotAcyclic, got %v", err)
	}
}

func TestPlan_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		def  domain.Definition
		want error
	}{
		{
			name: "empty definition",
			def:  domain.Definition{},
			want: ErrEmptyDefinition,
		},
		{
			name: "empty node id",
			def: domain.Definition{
				Nodes: []domain.Node{{ID: ""}},
			},
			want: ErrEmptyNodeID,
		},
		{
			name: "duplicate node id",
			def: domain.Definition{
				Nodes: []domain.Node{node("a"), node("a")},
			},
			want: ErrDuplicateNodeID,
		},
		{
			name: "edge to unknown node",
			def: domain.Definition{
				Nodes: []domain.Node{node("a")},
				Edges: []domain.Edge{edge("a", "ghost")},
			},
			want: ErrUnknownEdgeNode,
		},
		{
			name: "edge from unknown node",
			def: domain.Definition{
				Nodes: []domain.Node{node("a")},
				Edges: []domain.Edge{edge("ghost", "a")},
			},
			want: ErrUnknownEdgeNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(PlanRequest{Definition: tt.def})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Error("expected ValidationError wrapper")
			}
		})
	}
}
