package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Cascade/internal/domain"
)

// Стандартный пятипольный формат: минута час день месяц день_недели.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDue вычисляет следующий момент срабатывания расписания после from.
//
// Cron-выражение интерпретируется в часовом поясе расписания ("0 9 * * *"
// в Europe/Berlin срабатывает в 9 утра по Берлину независимо от пояса
// сервера); невалидный пояс откатывается на UTC. Результат всегда в UTC —
// так он хранится в next_due_at.
func NextDue(sched *domain.Schedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := from.In(loc)

	switch {
	case sched.IsCron():
		expr, err := cronParser.Parse(sched.CronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", sched.CronExpr, err)
		}
		return expr.Next(local).UTC(), nil

	case sched.IsInterval():
		return local.Add(time.Duration(sched.IntervalSec) * time.Second).UTC(), nil

	default:
		return time.Time{}, fmt.Errorf("schedule %s has neither cron_expr nor interval_sec", sched.ID)
	}
}

// FirstDue вычисляет первое срабатывание нового расписания.
func FirstDue(sched *domain.Schedule) (time.Time, error) {
	return NextDue(sched, time.Now())
}

// ValidateCronExpr проверяет cron-выражение при сохранении расписания,
// чтобы ошибка всплыла в API, а не в тике планировщика.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
