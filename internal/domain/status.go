package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	          (или) → CANCELLED (из PENDING или RUNNING, между шагами)
type RunStatus string

const (
	// RunStatusPending — run создан, начальное состояние опубликовано,
	// но ни один шаг ещё не выполнен.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — диспетчер выполняет шаги run.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — очередь опустела, все узлы выполнены.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — run остановлен фатальной ошибкой движка.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusCancelled — run отменён пользователем; диспетчер
	// проверяет отмену между шагами.
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}
