package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// Scheduler — планировщик, обрабатывающий due schedules.
type Scheduler struct {
	scheduleRepo *repo.ScheduleRepo
	runRepo      *repo.RunRepo
	workflowRepo *repo.WorkflowRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
	batchSize    int
}

// Config — конфигурация Scheduler.
type Config struct {
	ScheduleRepo *repo.ScheduleRepo
	RunRepo      *repo.RunRepo
	WorkflowRepo *repo.WorkflowRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
	BatchSize    int // количество schedules за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Scheduler{
		scheduleRepo: cfg.ScheduleRepo,
		runRepo:      cfg.RunRepo,
		workflowRepo: cfg.WorkflowRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
		batchSize:    batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due schedules (enabled=true, next_due_at <= now)
// 2. Для каждого schedule создаёт run и публикует начальное состояние
// 3. Обновляет next_due_at
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.scheduleRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(schedules))

	var processed, created int
	for i := range schedules {
		sched := &schedules[i]

		runCreated, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		processed++
		if runCreated {
			created++
		}
	}

	s.logger.Info("scheduler tick completed",
		"due", len(schedules),
		"processed", processed,
		"runs_created", created,
	)

	return nil
}

// processSchedule обрабатывает один schedule.
// Возвращает true, если run был создан.
//
// Создание run, обновление schedule и публикация начального состояния
// не атомарны: сбой между шагами может привести к повторному запуску
// на следующем тике. Запуск по расписанию — at-least-once.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) (bool, error) {
	// 1. Workflow должен существовать
	wf, err := s.workflowRepo.GetByID(ctx, sched.WorkflowID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.Warn("workflow not found for schedule, skipping",
				"schedule_id", sched.ID,
				"workflow_id", sched.WorkflowID,
			)
			// Не возвращаем ошибку — просто пропускаем
			return false, nil
		}
		return false, fmt.Errorf("get workflow: %w", err)
	}

	// 2. Планируем очередь выполнения
	run := &domain.Run{
		ID:         uuid.New(),
		WorkflowID: wf.ID,
		UserID:     wf.UserID,
		Status:     domain.RunStatusPending,
		CreatedAt:  now,
	}

	state, err := engine.Plan(engine.PlanRequest{
		WorkflowID: wf.ID.String(),
		UserID:     wf.UserID,
		RunID:      run.ID.String(),
		Definition: wf.Definition,
	})
	if err != nil {
		// Definition сломан — run не создаём, расписание не трогаем
		return false, fmt.Errorf("plan workflow: %w", err)
	}

	// 3. Создаём run
	if err := s.runRepo.Create(ctx, run); err != nil {
		return false, fmt.Errorf("create run: %w", err)
	}

	s.logger.Info("created run from schedule",
		"run_id", run.ID,
		"schedule_id", sched.ID,
		"schedule_name", sched.Name,
		"workflow_id", sched.WorkflowID,
	)

	// 4. Вычисляем следующее время выполнения
	nextDue, err := NextDue(sched, now)
	if err != nil {
		s.logger.Error("failed to calculate next due",
			"schedule_id", sched.ID,
			"error", err,
		)
		// Schedule некорректный — лучше не трогать next_due_at
		return true, nil
	}

	// 5. Обновляем schedule до публикации: дубликат при сбое публикации
	// хуже, чем пропущенный слот
	sched.RecordRun(run.ID, nextDue)
	if err := s.scheduleRepo.Update(ctx, sched); err != nil {
		return true, fmt.Errorf("update schedule: %w", err)
	}

	// 6. Публикуем начальное состояние в очередь шагов
	if err := s.publisher.PublishWorkflowStep(ctx, state); err != nil {
		// Run уже создан; без начального сообщения он не стартует
		s.logger.Error("failed to publish initial state",
			"run_id", run.ID,
			"error", err,
		)
		run.MarkFailed("dispatch failed: "+err.Error(), nil)
		if uerr := s.runRepo.Update(ctx, run); uerr != nil {
			s.logger.Error("failed to mark run failed", "run_id", run.ID, "error", uerr)
		}
		return true, nil
	}

	telemetry.RunsStarted.WithLabelValues("schedule").Inc()

	return true, nil
}
