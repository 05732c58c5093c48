// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация продолжений и событий
//   - consumer.go   — потребление сообщений из очередей
//   - continuer.go  — engine.Continuer поверх очереди шагов
//
// Типы сообщений:
//   - workflow.step  — сериализованный State, один шаг на сообщение
//   - workflow.event — событие прогресса run-а
//
// Exchanges:
//   - cascade.workflows — очередь продолжений (direct)
//   - cascade.events    — события прогресса (topic, key = workflowId)
//   - cascade.dlq       — dead letter queue
//
// Доставка шагов at-least-once: подтверждение уходит только после
// выполнения шага и публикации продолжения, поэтому сбой процесса
// между ними приводит к повторному выполнению шага, не к потере run-а.
package mq
