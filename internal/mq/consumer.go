package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrReject помечает сообщение безнадёжным: обработчик вернул его,
// потому что повтор не поможет (битый payload, несуществующий run).
// Такое сообщение nack-ается без requeue и уходит в DLQ очереди.
var ErrReject = errors.New("reject message")

// Handler обрабатывает одно доставленное сообщение. nil — ack;
// ErrReject — в DLQ; любая другая ошибка — requeue и повтор.
type Handler func(ctx context.Context, d *Delivery) error

// Delivery — распарсенный конверт плюс сырая AMQP-доставка.
type Delivery struct {
	Message Message
	Raw     amqp.Delivery
}

// ConsumerConfig — параметры потребления.
type ConsumerConfig struct {
	// Queue — очередь, из которой читать.
	Queue string

	// Handler — обработчик сообщений.
	Handler Handler

	// Prefetch — сколько неподтверждённых сообщений брокер выдаёт
	// одному потребителю; минимум 1.
	Prefetch int
}

// Consumer читает очередь RabbitMQ и переживает разрывы соединения:
// после reconnect потребление настраивается заново.
//
// Ack уходит строго после обработчика, поэтому падение процесса
// посреди обработки возвращает сообщение в очередь (at-least-once).
type Consumer struct {
	conn   *Connection
	logger *slog.Logger
	cfg    ConsumerConfig
	cancel context.CancelFunc
}

// NewConsumer создаёт потребитель очереди cfg.Queue.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Consumer{conn: conn, logger: logger, cfg: cfg}
}

// Start блокирует до отмены ctx, перезапуская потребление после
// каждого разрыва соединения.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	for {
		deliveries, err := c.open()
		if err != nil {
			c.logger.Error("consume setup failed", "queue", c.cfg.Queue, "error", err)
			if err := c.awaitReconnect(ctx); err != nil {
				return err
			}
			continue
		}
		c.logger.Info("consuming", "queue", c.cfg.Queue, "prefetch", c.cfg.Prefetch)

		if err := c.drain(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("delivery stream closed", "queue", c.cfg.Queue)
			if err := c.awaitReconnect(ctx); err != nil {
				return err
			}
		}
	}
}

// Stop прерывает Start.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// open выставляет prefetch и начинает потребление на текущем канале.
func (c *Consumer) open() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, fmt.Errorf("amqp channel not available")
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	// auto-ack выключен: подтверждаем вручную после обработчика.
	deliveries, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}
	return deliveries, nil
}

// awaitReconnect ждёт восстановления соединения или отмены ctx.
func (c *Consumer) awaitReconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.conn.ReconnectNotify():
		return nil
	}
}

// drain обрабатывает поток доставок до закрытия канала или отмены ctx.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			c.dispatch(ctx, raw)
		}
	}
}

// dispatch парсит конверт, зовёт обработчик и подтверждает результат.
func (c *Consumer) dispatch(ctx context.Context, raw amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.logger.Error("malformed envelope",
			"queue", c.cfg.Queue, "error", err, "body", string(raw.Body))
		raw.Nack(false, false)
		return
	}

	err := c.cfg.Handler(ctx, &Delivery{Message: msg, Raw: raw})
	if err != nil {
		requeue := !errors.Is(err, ErrReject)
		c.logger.Error("message handling failed",
			"queue", c.cfg.Queue,
			"message_id", msg.ID,
			"type", msg.Type,
			"requeue", requeue,
			"error", err)
		raw.Nack(false, requeue)
		return
	}

	raw.Ack(false)
}

// ParsePayload декодирует payload конверта в конкретный тип.
// Payload после Unmarshal конверта — map[string]any, поэтому он
// прогоняется через JSON ещё раз.
func ParsePayload[T any](msg *Message) (T, error) {
	var out T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return out, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal payload: %w", err)
	}
	return out, nil
}
