package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	// ExchangeWorkflows — шаги выполнения workflow.
	ExchangeWorkflows Exchange = "cascade.workflows"

	// ExchangeEvents — события прогресса; topic, routing key = workflowId,
	// подписчики привязывают собственные очереди.
	ExchangeEvents Exchange = "cascade.events"

	// ExchangeDLQ — dead letter exchange.
	ExchangeDLQ Exchange = "cascade.dlq"
)

// Queues — имена очередей.
const (
	// QueueWorkflowSteps — очередь продолжений: каждое сообщение —
	// сериализованный State, потребитель выполняет один шаг.
	QueueWorkflowSteps Queue = "workflow.steps"

	// QueueDLQSteps — шаги, которые не удалось обработать.
	QueueDLQSteps Queue = "dlq.steps"
)

// Routing keys.
const (
	RoutingKeyStep     RoutingKey = "step"
	RoutingKeyDLQSteps RoutingKey = "steps"
)

// SetupTopology объявляет обменники, очереди и привязки.
// Идемпотентна: повторное объявление с теми же параметрами — no-op.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		if err := declareExchange(ch, ExchangeWorkflows, "direct"); err != nil {
			return err
		}
		if err := declareExchange(ch, ExchangeEvents, "topic"); err != nil {
			return err
		}
		if err := declareExchange(ch, ExchangeDLQ, "direct"); err != nil {
			return err
		}

		// workflow.steps — с DLQ: битое сообщение не должно крутиться
		// в очереди вечно.
		err := declareQueue(ch, QueueWorkflowSteps, amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQSteps),
		})
		if err != nil {
			return err
		}
		if err := declareQueue(ch, QueueDLQSteps, nil); err != nil {
			return err
		}

		if err := bindQueue(ch, QueueWorkflowSteps, RoutingKeyStep, ExchangeWorkflows); err != nil {
			return err
		}
		return bindQueue(ch, QueueDLQSteps, RoutingKeyDLQSteps, ExchangeDLQ)
	})
}

func declareExchange(ch *amqp.Channel, name Exchange, kind string) error {
	// durable, не auto-delete, не internal, без no-wait
	if err := ch.ExchangeDeclare(string(name), kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

func declareQueue(ch *amqp.Channel, name Queue, args amqp.Table) error {
	// durable, не auto-delete, не exclusive, без no-wait
	if _, err := ch.QueueDeclare(string(name), true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}

func bindQueue(ch *amqp.Channel, queue Queue, key RoutingKey, exchange Exchange) error {
	if err := ch.QueueBind(string(queue), string(key), string(exchange), false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", queue, exchange, err)
	}
	return nil
}
