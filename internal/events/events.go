// Package events описывает события прогресса выполнения workflow.
//
// События — best-effort поток для наблюдателей (SSE, логи, шина):
// сбой доставки логируется и никогда не валит выполнение.
package events

import (
	"context"
	"log/slog"
)

// NodeStatus — статус узла в событии прогресса.
type NodeStatus string

const (
	// StatusRunning — узел взят в работу.
	StatusRunning NodeStatus = "running"

	// StatusSuccess — узел выполнен, выходы смержены.
	StatusSuccess NodeStatus = "success"

	// StatusFailure — шаг упал с фатальной ошибкой.
	StatusFailure NodeStatus = "failure"
)

// ErrorDetail — описание фатальной ошибки в failure-событии.
type ErrorDetail struct {
	// Kind — класс ошибки, например "UnresolvedReferenceError".
	Kind string `json:"kind"`

	// Detail — человекочитаемое сообщение.
	Detail string `json:"detail"`
}

// Event — одно событие прогресса run-а.
type Event struct {
	// NodeID — узел, к которому относится событие.
	NodeID string `json:"nodeId"`

	// Status — running, success или failure.
	Status NodeStatus `json:"status"`

	// Remaining — размер очереди после шага; только у success.
	Remaining *int `json:"remaining,omitempty"`

	// Error — детали ошибки; только у failure.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Running создаёт running-событие.
func Running(nodeID string) Event {
	return Event{NodeID: nodeID, Status: StatusRunning}
}

// Success создаёт success-событие с размером оставшейся очереди.
func Success(nodeID string, remaining int) Event {
	return Event{NodeID: nodeID, Status: StatusSuccess, Remaining: &remaining}
}

// Failure создаёт failure-событие.
func Failure(nodeID, kind, detail string) Event {
	return Event{
		NodeID: nodeID,
		Status: StatusFailure,
		Error:  &ErrorDetail{Kind: kind, Detail: detail},
	}
}

// Sink — приёмник событий прогресса. Реализации: LogSink, NopSink,
// mq.EventPublisher. Ошибка Emit не фатальна для вызывающего.
type Sink interface {
	Emit(ctx context.Context, workflowID string, event Event) error
}

// LogSink пишет события в структурированный лог.
type LogSink struct {
	Logger *slog.Logger
}

// Emit реализует Sink.
func (s *LogSink) Emit(_ context.Context, workflowID string, event Event) error {
	attrs := []any{
		slog.String("workflow_id", workflowID),
		slog.String("node_id", event.NodeID),
		slog.String("status", string(event.Status)),
	}
	if event.Remaining != nil {
		attrs = append(attrs, slog.Int("remaining", *event.Remaining))
	}
	if event.Error != nil {
		attrs = append(attrs, slog.String("error_kind", event.Error.Kind),
			slog.String("error_detail", event.Error.Detail))
	}
	s.Logger.Info("workflow event", attrs...)
	return nil
}

// NopSink отбрасывает события. Удобен в тестах.
type NopSink struct{}

// Emit реализует Sink.
func (NopSink) Emit(context.Context, string, Event) error { return nil }
