package mq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

// Сообщение workflow.step проходит два слоя сериализации: State как
// payload конверта Message и конверт целиком. Проверяем, что State
// переживает полный цикл publish → consume → ParsePayload.
func TestParsePayload_WorkflowStepRoundTrip(t *testing.T) {
	state := &engine.State{
		WorkflowID: uuid.New().String(),
		UserID:     "user-1",
		RunID:      uuid.New().String(),
		Queue: []domain.Node{
			{ID: "check", Block: domain.Block{
				Type:  "UrlStatusCheck",
				Input: map[string]any{"url": "https://example.com", "code": "200"},
			}},
			{ID: "notify", Block: domain.Block{
				Type:  "SlackWebhook",
				Input: map[string]any{"message": "{{check.code}}"},
			}},
		},
		Outputs: map[string]string{"start.text": "go"},
		Edges: []domain.Edge{
			{Source: "check", Target: "notify", SourceHandle: domain.HandleTrue},
		},
		Status: engine.StatusPending,
	}

	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeWorkflowStep,
		Payload:   state,
		Timestamp: time.Now(),
	}

	// Publisher сериализует конверт, consumer парсит его обратно.
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var received Message
	if err := json.Unmarshal(body, &received); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if received.Type != MessageTypeWorkflowStep {
		t.Errorf("type = %s", received.Type)
	}

	restored, err := ParsePayload[engine.State](&received)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}

	if restored.RunID != state.RunID {
		t.Errorf("RunID = %s, want %s", restored.RunID, state.RunID)
	}
	if restored.Status != engine.StatusPending {
		t.Errorf("Status = %s", restored.Status)
	}
	if len(restored.Queue) != 2 {
		t.Fatalf("queue len = %d, want 2", len(restored.Queue))
	}
	if restored.Queue[0].Block.Type != "UrlStatusCheck" {
		t.Errorf("block type = %s", restored.Queue[0].Block.Type)
	}
	if restored.Queue[1].Block.Input["message"] != "{{check.code}}" {
		t.Error("placeholder text should survive serialization untouched")
	}
	if restored.Outputs["start.text"] != "go" {
		t.Error("outputs should survive the round trip")
	}
	if restored.Edges[0].SourceHandle != domain.HandleTrue {
		t.Errorf("edge handle = %q", restored.Edges[0].SourceHandle)
	}
}

func TestParsePayload_Malformed(t *testing.T) {
	msg := &Message{
		ID:      uuid.New().String(),
		Type:    MessageTypeWorkflowStep,
		Payload: "not a state",
	}
	if _, err := ParsePayload[engine.State](msg); err == nil {
		t.Error("expected error for malformed payload")
	}
}
