package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule — автоматический запуск workflow по времени.
//
// Поддерживаются два режима: cron-выражение ("0 9 * * *") либо фиксиро-
// ванный интервал в секундах; cron имеет приоритет, если заданы оба.
// Планировщик сравнивает NextDueAt с текущим временем и создаёт run,
// когда срок подошёл.
type Schedule struct {
	ID         uuid.UUID `json:"id"`
	WorkflowID uuid.UUID `json:"workflow_id"`

	// Name — человекочитаемое имя расписания.
	Name string `json:"name,omitempty"`

	// CronExpr — пятипольное cron-выражение (минута час день месяц
	// день_недели), вычисляется в поясе Timezone.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — период в секундах; действует, когда CronExpr пуст.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — IANA-имя пояса; пустое или невалидное значение
	// трактуется как UTC.
	Timezone string `json:"timezone"`

	// Enabled — выключенное расписание остаётся в БД, но не срабатывает.
	Enabled bool `json:"enabled"`

	// NextDueAt — ближайшее срабатывание (UTC); nil у только что
	// созданного расписания до первого пересчёта.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastRunID *uuid.UUID `json:"last_run_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron — расписание задано cron-выражением.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval — расписание задано интервалом.
func (s *Schedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalSec > 0
}

// IsDue — пора ли срабатывать. Выключенные и непересчитанные
// расписания никогда не due.
func (s *Schedule) IsDue(now time.Time) bool {
	if !s.Enabled || s.NextDueAt == nil {
		return false
	}
	return !now.Before(*s.NextDueAt)
}

// RecordRun фиксирует созданный run и переносит NextDueAt на
// следующее срабатывание.
func (s *Schedule) RecordRun(runID uuid.UUID, nextDue time.Time) {
	now := time.Now()
	s.LastRunAt = &now
	s.LastRunID = &runID
	s.NextDueAt = &nextDue
	s.UpdatedAt = now
}
