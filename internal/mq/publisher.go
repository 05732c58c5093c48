package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/events"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	// MessageTypeWorkflowStep — сериализованный State; потребитель
	// выполняет один шаг.
	MessageTypeWorkflowStep MessageType = "workflow.step"

	// MessageTypeWorkflowEvent — событие прогресса run-а.
	MessageTypeWorkflowEvent MessageType = "workflow.event"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishWorkflowStep публикует сериализованный State как продолжение.
// Потребитель: Dispatcher.
func (p *Publisher) PublishWorkflowStep(ctx context.Context, state *engine.State) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeWorkflowStep,
		Payload:   state,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeWorkflows, RoutingKeyStep, msg)
}

// EventPayload — payload события прогресса.
type EventPayload struct {
	WorkflowID string       `json:"workflowId"`
	RunID      string       `json:"runId,omitempty"`
	Event      events.Event `json:"event"`
}

// PublishEvent публикует событие прогресса в topic-обменник;
// routing key — workflowId, подписчики фильтруют по нему.
func (p *Publisher) PublishEvent(ctx context.Context, workflowID string, ev events.Event) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeWorkflowEvent,
		Payload:   EventPayload{WorkflowID: workflowID, Event: ev},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeEvents, RoutingKey(workflowID), msg)
}

// EventSink адаптирует Publisher к events.Sink: события прогресса
// уходят в cascade.events.
type EventSink struct {
	pub *Publisher
}

// NewEventSink создаёт EventSink.
func NewEventSink(pub *Publisher) *EventSink {
	return &EventSink{pub: pub}
}

// Emit реализует events.Sink.
func (s *EventSink) Emit(ctx context.Context, workflowID string, ev events.Event) error {
	return s.pub.PublishEvent(ctx, workflowID, ev)
}
