package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shaiso/Cascade/internal/blocks"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/events"
)

// fakeBlock — обработчик для тестов с настраиваемым поведением.
type fakeBlock struct {
	blockType string
	run       func(ctx context.Context, req *blocks.Request) (*blocks.Result, error)
}

func (b *fakeBlock) Type() string { return b.blockType }

func (b *fakeBlock) Run(ctx context.Context, req *blocks.Request) (*blocks.Result, error) {
	return b.run(ctx, req)
}

// recordingSink запоминает все события в порядке получения.
type recordingSink struct {
	workflowIDs []string
	events      []events.Event
}

func (s *recordingSink) Emit(_ context.Context, workflowID string, ev events.Event) error {
	s.workflowIDs = append(s.workflowIDs, workflowID)
	s.events = append(s.events, ev)
	return nil
}

// echoRegistry — реестр с блоком "echo", возвращающим свои входы
// как выходы, и блоком "fail", всегда падающим.
func testRegistry() *blocks.Registry {
	r := blocks.NewRegistry()
	r.Register(&fakeBlock{
		blockType: "echo",
		run: func(_ context.Context, req *blocks.Request) (*blocks.Result, error) {
			out := make(map[string]string, len(req.Input))
			for k, v := range req.Input {
				out[k] = fmt.Sprint(v)
			}
			return blocks.Plain(out), nil
		},
	})
	r.Register(&fakeBlock{
		blockType: "fail",
		run: func(context.Context, *blocks.Request) (*blocks.Result, error) {
			return nil, errors.New("boom")
		},
	})
	return r
}

func echoNode(id string, input map[string]any) domain.Node {
	if input == nil {
		input = map[string]any{}
	}
	return domain.Node{ID: id, Block: domain.Block{Type: "echo", Input: input}}
}

func typedNode(id, blockType string, input map[string]any) domain.Node {
	if input == nil {
		input = map[string]any{}
	}
	return domain.Node{ID: id, Block: domain.Block{Type: blockType, Input: input}}
}

func TestEngine_Run_LinearChainEventOrder(t *testing.T) {
	sink := &recordingSink{}
	eng := New(Config{Registry: testRegistry(), Sink: sink})

	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{
			echoNode("a", map[string]any{"v": "1"}),
			echoNode("b", map[string]any{"from": "{{a.v}}"}),
			echoNode("c", map[string]any{"from": "{{b.from}}"}),
		},
		Edges: []domain.Edge{edge("a", "b"), edge("b", "c")},
	})

	if err := eng.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Status != StatusTerminal {
		t.Fatalf("status = %s, want TERMINAL", state.Status)
	}

	type step struct {
		nodeID    string
		status    events.NodeStatus
		remaining int
	}
	want := []step{
		{"a", events.StatusRunning, -1},
		{"a", events.StatusSuccess, 2},
		{"b", events.StatusRunning, -1},
		{"b", events.StatusSuccess, 1},
		{"c", events.StatusRunning, -1},
		{"c", events.StatusSuccess, 0},
	}
	if len(sink.events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(sink.events), len(want), sink.events)
	}
	for i, w := range want {
		ev := sink.events[i]
		if ev.NodeID != w.nodeID || ev.Status != w.status {
			t.Errorf("event[%d] = %s/%s, want %s/%s", i, ev.NodeID, ev.Status, w.nodeID, w.status)
		}
		if w.remaining >= 0 {
			if ev.Remaining == nil || *ev.Remaining != w.remaining {
				t.Errorf("event[%d] remaining = %v, want %d", i, ev.Remaining, w.remaining)
			}
		}
		if sink.workflowIDs[i] != "wf-1" {
			t.Errorf("event[%d] routed to %s, want wf-1", i, sink.workflowIDs[i])
		}
	}

	if state.Outputs["c.from"] != "1" {
		t.Errorf("c.from = %q, want 1 (value threaded through the chain)", state.Outputs["c.from"])
	}
}

func TestEngine_Step_ExecutesExactlyOneNode(t *testing.T) {
	eng := New(Config{Registry: testRegistry()})
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{echoNode("a", nil), echoNode("b", nil)},
		Edges: []domain.Edge{edge("a", "b")},
	})

	if err := eng.Step(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", state.Remaining())
	}
	if state.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", state.Status)
	}
}

func TestEngine_Step_HandlerFailure(t *testing.T) {
	sink := &recordingSink{}
	eng := New(Config{Registry: testRegistry(), Sink: sink})
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{
			echoNode("a", map[string]any{"v": "kept"}),
			typedNode("bad", "fail", nil),
			echoNode("never", nil),
		},
		Edges: []domain.Edge{edge("a", "bad"), edge("bad", "never")},
	})

	err := eng.Run(context.Background(), state)

	var handlerErr *HandlerExecutionError
	if !errors.As(err, &handlerErr) {
		t.Fatalf("expected HandlerExecutionError, got %v", err)
	}
	if handlerErr.NodeID != "bad" {
		t.Errorf("NodeID = %s, want bad", handlerErr.NodeID)
	}
	if state.Status != StatusFailed {
		t.Errorf("status = %s, want FAILED", state.Status)
	}
	// Merged outputs survive the failure.
	if state.Outputs["a.v"] != "kept" {
		t.Error("outputs merged before the failure should remain visible")
	}

	last := sink.events[len(sink.events)-1]
	if last.Status != events.StatusFailure || last.NodeID != "bad" {
		t.Fatalf("last event = %+v, want failure on bad", last)
	}
	if last.Error == nil || last.Error.Kind != KindHandlerExecution {
		t.Errorf("failure kind = %+v, want %s", last.Error, KindHandlerExecution)
	}
}

func TestEngine_Step_UnknownBlockType(t *testing.T) {
	eng := New(Config{Registry: testRegistry()})
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{typedNode("x", "NoSuchBlock", nil)},
	})

	err := eng.Step(context.Background(), state)

	var unknown *UnknownBlockTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownBlockTypeError, got %v", err)
	}
	if unknown.BlockType != "NoSuchBlock" {
		t.Errorf("BlockType = %s", unknown.BlockType)
	}
	if ErrorKind(err) != KindUnknownBlockType {
		t.Errorf("kind = %s", ErrorKind(err))
	}
	if state.Status != StatusFailed {
		t.Errorf("status = %s, want FAILED", state.Status)
	}
}

func TestEngine_Step_UnresolvedReference(t *testing.T) {
	eng := New(Config{Registry: testRegistry()})
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{echoNode("x", map[string]any{"v": "{{ghost.out}}"})},
	})

	err := eng.Step(context.Background(), state)

	var unresolved *UnresolvedReferenceError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedReferenceError, got %v", err)
	}
	if state.Status != StatusFailed {
		t.Errorf("status = %s, want FAILED", state.Status)
	}
}

func TestEngine_Run_BranchPruning(t *testing.T) {
	r := testRegistry()
	r.Register(&fakeBlock{
		blockType: "branch",
		run: func(_ context.Context, req *blocks.Request) (*blocks.Result, error) {
			outcome := req.Input["outcome"] == "true"
			return blocks.Branched(outcome, map[string]string{"result": fmt.Sprint(outcome)}), nil
		},
	})
	sink := &recordingSink{}
	eng := New(Config{Registry: r, Sink: sink})

	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{
			typedNode("cond", "branch", map[string]any{"outcome": "true"}),
			echoNode("yes", nil),
			echoNode("no", nil),
		},
		Edges: []domain.Edge{
			branchEdge("cond", "yes", domain.HandleTrue),
			branchEdge("cond", "no", domain.HandleFalse),
		},
	})

	if err := eng.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ev := range sink.events {
		if ev.NodeID == "no" {
			t.Fatal("pruned node should never produce events")
		}
	}
	if _, ok := state.Outputs["no.result"]; ok {
		t.Error("pruned node should not contribute outputs")
	}
	if state.Outputs["cond.result"] != "true" {
		t.Errorf("cond.result = %q", state.Outputs["cond.result"])
	}

	// Remaining after cond: the queue held yes and no, pruning removed
	// no before the success event was emitted.
	first := sink.events[1]
	if first.NodeID != "cond" || first.Remaining == nil || *first.Remaining != 1 {
		t.Errorf("success(cond) remaining = %+v, want 1", first)
	}
}

func TestEngine_Run_PrunedAncestorReferenceFails(t *testing.T) {
	// c depends on the pruned b only through its placeholder; pruning
	// is single-hop, so c runs and fails on the unresolved reference.
	r := testRegistry()
	r.Register(&fakeBlock{
		blockType: "branch",
		run: func(context.Context, *blocks.Request) (*blocks.Result, error) {
			return blocks.Branched(true, nil), nil
		},
	})
	eng := New(Config{Registry: r})

	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{
			typedNode("cond", "branch", nil),
			echoNode("a", nil),
			echoNode("b", map[string]any{"v": "x"}),
			echoNode("c", map[string]any{"v": "{{b.v}}"}),
		},
		Edges: []domain.Edge{
			branchEdge("cond", "a", domain.HandleTrue),
			branchEdge("cond", "b", domain.HandleFalse),
			edge("b", "c"),
		},
	})

	err := eng.Run(context.Background(), state)

	var unresolved *UnresolvedReferenceError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedReferenceError, got %v", err)
	}
	if unresolved.NodeID != "c" {
		t.Errorf("NodeID = %s, want c", unresolved.NodeID)
	}
}

// queueContinuer имитирует внешнюю очередь: сериализует State и
// складывает сообщения в слайс.
type queueContinuer struct {
	messages [][]byte
}

func (q *queueContinuer) Continue(_ context.Context, state *State) error {
	data, err := state.Marshal()
	if err != nil {
		return err
	}
	q.messages = append(q.messages, data)
	return nil
}

func TestEngine_DistributedContinuation(t *testing.T) {
	queue := &queueContinuer{}
	eng := New(Config{Registry: testRegistry(), Continuer: queue})

	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{
			echoNode("a", map[string]any{"v": "1"}),
			echoNode("b", map[string]any{"from": "{{a.v}}"}),
			echoNode("c", map[string]any{"from": "{{b.from}}"}),
		},
		Edges: []domain.Edge{edge("a", "b"), edge("b", "c")},
	})

	// Имитация диспетчера: каждый шаг — отдельное сообщение, каждое
	// восстанавливается из байтов, как сделал бы другой процесс.
	if err := eng.Step(context.Background(), state); err != nil {
		t.Fatalf("first step: %v", err)
	}

	steps := 1
	for len(queue.messages) > 0 {
		data := queue.messages[0]
		queue.messages = queue.messages[1:]

		restored, err := UnmarshalState(data)
		if err != nil {
			t.Fatalf("unmarshal continuation: %v", err)
		}
		if err := eng.Step(context.Background(), restored); err != nil {
			t.Fatalf("step %d: %v", steps, err)
		}
		steps++
		state = restored
	}

	if steps != 3 {
		t.Errorf("steps = %d, want 3", steps)
	}
	if state.Status != StatusTerminal {
		t.Errorf("status = %s, want TERMINAL", state.Status)
	}
	if state.Outputs["c.from"] != "1" {
		t.Errorf("c.from = %q, want 1", state.Outputs["c.from"])
	}
}

func TestEngine_Step_Redelivery(t *testing.T) {
	// Одно и то же сообщение может быть доставлено дважды: шаг по двум
	// независимым копиям снапшота обязан выбрать один и тот же узел и
	// дать байт-в-байт одинаковое следующее состояние.
	eng := New(Config{Registry: testRegistry()})

	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{
			echoNode("root", map[string]any{"v": "1"}),
			echoNode("left", map[string]any{"from": "{{root.v}}"}),
			echoNode("right", map[string]any{"from": "{{root.v}}"}),
		},
		Edges: []domain.Edge{edge("root", "left"), edge("root", "right")},
	})
	if err := eng.Step(context.Background(), state); err != nil {
		t.Fatalf("first step: %v", err)
	}

	snapshot, err := state.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	next := make([][]byte, 2)
	for i := range next {
		restored, err := UnmarshalState(snapshot)
		if err != nil {
			t.Fatalf("unmarshal delivery %d: %v", i, err)
		}
		if err := eng.Step(context.Background(), restored); err != nil {
			t.Fatalf("step delivery %d: %v", i, err)
		}
		if next[i], err = restored.Marshal(); err != nil {
			t.Fatalf("marshal delivery %d: %v", i, err)
		}
	}

	if string(next[0]) != string(next[1]) {
		t.Errorf("redelivered step diverged:\n%s\n%s", next[0], next[1])
	}
}

func TestEngine_Step_OnFinishedRun(t *testing.T) {
	eng := New(Config{Registry: testRegistry()})
	state := &State{Status: StatusTerminal, Outputs: map[string]string{}}

	if err := eng.Step(context.Background(), state); err == nil {
		t.Error("expected error stepping a finished run")
	}
}

func TestEngine_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(Config{Registry: testRegistry()})
	state := planDef(t, domain.Definition{
		Nodes: []domain.Node{echoNode("a", nil)},
	})

	if err := eng.Run(ctx, state); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
