package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Cascade/internal/blocks"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/events"
)

// Continuer продолжает выполнение run-а после завершённого шага.
//
// Реализация для распределённого режима публикует сериализованный
// State во внешнюю очередь; любой потребитель выполнит следующий шаг.
type Continuer interface {
	Continue(ctx context.Context, state *State) error
}

// Config — конфигурация движка.
type Config struct {
	// Registry — реестр обработчиков блоков. Обязателен.
	Registry *blocks.Registry

	// Sink — приёмник событий прогресса. nil — события отбрасываются.
	Sink events.Sink

	// Continuer — продолжение через внешнюю очередь. nil — вызывающий
	// сам крутит цикл (Engine.Run).
	Continuer Continuer

	// Logger — логгер. nil — slog.Default().
	Logger *slog.Logger
}

// Engine — машина состояний диспетчеризации workflow.
//
// Движок выполняет ровно один узел за вызов Step, строго в
// топологическом порядке очереди. Между шагами State полностью
// сериализуем, поэтому шаги одного run-а могут выполняться в разных
// процессах. Движок не ходит в БД и не знает о транспорте.
type Engine struct {
	registry  *blocks.Registry
	sink      events.Sink
	continuer Continuer
	logger    *slog.Logger
}

// New создаёт движок.
func New(cfg Config) *Engine {
	sink := cfg.Sink
	if sink == nil {
		sink = events.NopSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:  cfg.Registry,
		sink:      sink,
		continuer: cfg.Continuer,
		logger:    logger,
	}
}

// Step выполняет один узел: резолвит входы головы очереди, запускает
// обработчик, мержит выходы, применяет pruning и решает, продолжать
// ли run.
//
// На фатальной ошибке State переводится в FAILED и ошибка
// возвращается; уже смерженные outputs остаются в State. На успехе
// статус — PENDING (очередь не пуста) или TERMINAL (пуста); при
// PENDING и настроенном Continuer шаг завершается публикацией
// продолжения.
func (e *Engine) Step(ctx context.Context, state *State) error {
	if state.Status.IsTerminal() {
		return fmt.Errorf("step on finished run %s", state.RunID)
	}

	if state.Remaining() == 0 {
		state.Status = StatusTerminal
		return nil
	}

	state.Status = StatusRunning
	node := state.pop()

	log := e.logger.With(
		slog.String("run_id", state.RunID),
		slog.String("node_id", node.ID),
		slog.String("block_type", node.Block.Type),
	)
	log.Info("executing node")
	e.emit(ctx, state.WorkflowID, events.Running(node.ID))

	result, err := e.execute(ctx, node.ID, node.Block, state.Outputs)
	if err != nil {
		state.Status = StatusFailed
		log.Error("node failed",
			slog.String("error", err.Error()),
			slog.String("kind", ErrorKind(err)))
		e.emit(ctx, state.WorkflowID, events.Failure(node.ID, ErrorKind(err), err.Error()))
		return err
	}

	state.Status = StatusMerging
	state.merge(node.ID, result.Outputs)

	if result.Branch != nil {
		removed := state.Prune(node.ID, *result.Branch)
		if len(removed) > 0 {
			log.Info("pruned branch",
				slog.Bool("outcome", *result.Branch),
				slog.Any("removed", removed))
		}
	}

	if state.Remaining() == 0 {
		state.Status = StatusTerminal
	} else {
		state.Status = StatusPending
	}

	e.emit(ctx, state.WorkflowID, events.Success(node.ID, state.Remaining()))
	log.Info("node completed", slog.Int("remaining", state.Remaining()))

	if state.Status == StatusPending && e.continuer != nil {
		if err := e.continuer.Continue(ctx, state); err != nil {
			return fmt.Errorf("continue run %s: %w", state.RunID, err)
		}
	}

	return nil
}

// Run крутит цикл шагов in-process до финального состояния.
// Используется в тестах и в CLI-режиме без внешней очереди.
func (e *Engine) Run(ctx context.Context, state *State) error {
	for !state.Status.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// execute резолвит входы и запускает обработчик блока.
func (e *Engine) execute(ctx context.Context, nodeID string, block domain.Block, outputs map[string]string) (*blocks.Result, error) {
	input, err := ResolveInputs(nodeID, block.Input, outputs)
	if err != nil {
		return nil, err
	}

	handler, err := e.registry.Get(block.Type)
	if err != nil {
		return nil, &UnknownBlockTypeError{NodeID: nodeID, BlockType: block.Type}
	}

	result, err := handler.Run(ctx, &blocks.Request{NodeID: nodeID, Input: input})
	if err != nil {
		return nil, &HandlerExecutionError{NodeID: nodeID, Err: err}
	}
	if result == nil {
		result = blocks.Plain(nil)
	}

	return result, nil
}

// emit отправляет событие прогресса; сбой доставки не фатален.
func (e *Engine) emit(ctx context.Context, workflowID string, ev events.Event) {
	if err := e.sink.Emit(ctx, workflowID, ev); err != nil {
		e.logger.Warn("event emit failed",
			slog.String("workflow_id", workflowID),
			slog.String("node_id", ev.NodeID),
			slog.String("error", err.Error()))
	}
}
