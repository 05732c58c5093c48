package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — экземпляр выполнения workflow.
//
// Run создаётся когда пользователь запускает workflow вручную (через
// API/CLI) или когда scheduler создаёт run по расписанию.
//
// Run — операционная запись для наблюдения за выполнением; сам движок
// работает только с сериализуемым ExecutionState и в БД не ходит.
type Run struct {
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на workflow, который выполняется.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// UserID — от чьего имени выполняется run.
	UserID string `json:"user_id"`

	Status RunStatus `json:"status"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`

	// Outputs — итоговая карта выходов "{nodeId}.{key}" → значение.
	// Заполняется диспетчером при завершении run (в том числе частично
	// при FAILED — outputs append-only, отката нет).
	Outputs map[string]string `json:"outputs,omitempty"`

	// StartedAt — время первого шага (когда статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения (успешного или с ошибкой).
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения, 0 для
// незавершённого run.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED с итоговыми outputs.
func (r *Run) MarkSucceeded(outputs map[string]string) {
	r.finish(RunStatusSucceeded)
	r.Outputs = outputs
}

// MarkFailed переводит run в статус FAILED с ошибкой.
// outputs — то, что успело смержиться до фатальной ошибки.
func (r *Run) MarkFailed(err string, outputs map[string]string) {
	r.finish(RunStatusFailed)
	r.Error = err
	r.Outputs = outputs
}

// MarkCancelled переводит run в статус CANCELLED.
func (r *Run) MarkCancelled() {
	r.finish(RunStatusCancelled)
}

func (r *Run) finish(status RunStatus) {
	now := time.Now()
	r.Status = status
	r.FinishedAt = &now
}
