// Package telemetry — логирование и метрики сервисов Cascade.
//
// Каждый бинарь вызывает SetupLogger при старте и отдаёт метрики
// Prometheus на /metrics. Контекст выполнения (workflow_id, run_id,
// node_id) добавляется в логгер через With*-хелперы, чтобы поля
// назывались одинаково во всех сервисах.
package telemetry
