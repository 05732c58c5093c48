package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// handleStep обрабатывает одно сообщение workflow.step: восстанавливает
// State и выполняет ровно один узел.
//
// Ack уходит только после завершения шага, поэтому падение процесса
// посреди шага вернёт сообщение в очередь и шаг выполнится повторно
// (at-least-once). Безнадёжные сообщения (битый payload, неизвестный
// run) отправляются в DLQ через mq.ErrReject.
func (d *Dispatcher) handleStep(ctx context.Context, delivery *mq.Delivery) error {
	state, err := mq.ParsePayload[engine.State](&delivery.Message)
	if err != nil {
		d.logger.Error("malformed workflow.step payload", "error", err)
		telemetry.StepsDLQ.Inc()
		return fmt.Errorf("%w: parse state: %v", mq.ErrReject, err)
	}
	if state.Outputs == nil {
		state.Outputs = make(map[string]string)
	}

	runID, err := uuid.Parse(state.RunID)
	if err != nil {
		d.logger.Error("workflow.step with invalid run id", "run_id", state.RunID)
		telemetry.StepsDLQ.Inc()
		return fmt.Errorf("%w: invalid run id %q", mq.ErrReject, state.RunID)
	}

	// Проверка отмены между шагами: если run уже финален, остаток
	// очереди не выполняется и сообщение просто подтверждается.
	status, err := d.runRepo.GetStatus(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			d.logger.Warn("workflow.step for unknown run", "run_id", runID)
			telemetry.StepsDLQ.Inc()
			return fmt.Errorf("%w: run %s not found", mq.ErrReject, runID)
		}
		return fmt.Errorf("get run status: %w", err)
	}
	if status.IsTerminal() {
		d.logger.Info("dropping step for finished run",
			"run_id", runID,
			"status", status,
		)
		return nil
	}

	if status == domain.RunStatusPending {
		if err := d.runRepo.MarkRunningOnce(ctx, runID); err != nil {
			return err
		}
	}

	head := state.Head()
	blockType := ""
	if head != nil {
		blockType = head.Block.Type
	}

	started := time.Now()
	stepErr := d.engine.Step(ctx, &state)
	if blockType != "" {
		telemetry.StepDuration.WithLabelValues(blockType).Observe(time.Since(started).Seconds())
	}

	if stepErr != nil {
		// Статус FAILED означает фатальную ошибку узла: run завершён,
		// сообщение подтверждается. Любая другая ошибка (например, не
		// удалось опубликовать продолжение) — инфраструктурная, шаг
		// вернётся в очередь и выполнится повторно.
		if state.Status != engine.StatusFailed {
			return stepErr
		}

		telemetry.StepsTotal.WithLabelValues(blockType, telemetry.OutcomeFailure).Inc()
		return d.finalizeFailed(ctx, runID, &state, stepErr)
	}

	telemetry.StepsTotal.WithLabelValues(blockType, telemetry.OutcomeSuccess).Inc()

	if state.Status == engine.StatusTerminal {
		return d.finalizeSucceeded(ctx, runID, &state)
	}

	return nil
}

// finalizeSucceeded переводит run в SUCCEEDED с итоговыми outputs.
func (d *Dispatcher) finalizeSucceeded(ctx context.Context, runID uuid.UUID, state *engine.State) error {
	run, err := d.runRepo.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run for completion: %w", err)
	}

	run.MarkSucceeded(state.Outputs)
	if err := d.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run succeeded: %w", err)
	}

	telemetry.RunsCompleted.WithLabelValues(string(domain.RunStatusSucceeded)).Inc()
	d.logger.Info("run succeeded",
		"run_id", runID,
		"workflow_id", state.WorkflowID,
		"outputs", len(state.Outputs),
	)
	return nil
}

// finalizeFailed переводит run в FAILED; частично смерженные outputs
// сохраняются — отката нет.
func (d *Dispatcher) finalizeFailed(ctx context.Context, runID uuid.UUID, state *engine.State, stepErr error) error {
	run, err := d.runRepo.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run for failure: %w", err)
	}

	run.MarkFailed(engine.ErrorKind(stepErr)+": "+stepErr.Error(), state.Outputs)
	if err := d.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run failed: %w", err)
	}

	telemetry.RunsCompleted.WithLabelValues(string(domain.RunStatusFailed)).Inc()
	d.logger.Warn("run failed",
		"run_id", runID,
		"workflow_id", state.WorkflowID,
		"kind", engine.ErrorKind(stepErr),
		"error", stepErr.Error(),
	)
	return nil
}
