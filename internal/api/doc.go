// Package api реализует HTTP API поверх net/http ServeMux.
//
// Структура:
//   - handler.go           — Handler с зависимостями (repo, publisher)
//   - routes.go            — регистрация маршрутов /api/v1
//   - dto.go               — request/response структуры
//   - workflow_handler.go  — CRUD workflows + предпросмотр плана
//   - run_handler.go       — запуск, просмотр и отмена runs
//   - schedule_handler.go  — CRUD schedules
//   - middleware.go        — Recovery и Logging
//   - response.go          — JSON-хелперы и маппинг ошибок repo
//
// Запуск run не выполняет workflow в процессе API: он создаёт run
// в статусе PENDING и публикует начальное состояние в очередь шагов.
// Дальше работу подхватывают диспетчеры.
package api
