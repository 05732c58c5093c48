package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/Cascade/internal/blocks"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/events"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/repo"
)

// Default configuration values.
const (
	defaultPrefetch = 5
)

// Dispatcher выполняет шаги workflow из очереди продолжений.
//
// Dispatcher — stateless компонент системы, который:
//   - Получает сериализованный ExecutionState из workflow.steps
//   - Выполняет ровно один узел (engine.Step)
//   - Продолжение следующего шага публикует движок через StepContinuer
//   - Обновляет операционную запись run в БД (RUNNING/SUCCEEDED/FAILED)
//
// Диспетчеры масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди, шаги одного run-а могут выполняться
// разными процессами.
type Dispatcher struct {
	// Repositories
	runRepo *repo.RunRepo

	// MQ
	publisher *mq.Publisher
	conn      *mq.Connection

	// Engine
	engine *engine.Engine

	// Consumer
	consumer *mq.Consumer
	prefetch int

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Dispatcher.
type Config struct {
	// Repositories
	RunRepo *repo.RunRepo

	// MQ
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Registry — реестр блоков (опционально; nil — DefaultRegistry()).
	Registry *blocks.Registry

	// Sink — приёмник событий (опционально; nil — события в cascade.events).
	Sink events.Sink

	// Prefetch — количество предзагружаемых сообщений (default: 5).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = blocks.DefaultRegistry()
	}

	sink := cfg.Sink
	if sink == nil && cfg.Publisher != nil {
		sink = mq.NewEventSink(cfg.Publisher)
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	eng := engine.New(engine.Config{
		Registry:  registry,
		Sink:      sink,
		Continuer: mq.NewStepContinuer(cfg.Publisher),
		Logger:    logger,
	})

	return &Dispatcher{
		runRepo:   cfg.RunRepo,
		publisher: cfg.Publisher,
		conn:      cfg.Conn,
		engine:    eng,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start запускает Dispatcher: consumer очереди workflow.steps.
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancelFunc = cancel

	d.logger.Info("starting dispatcher", "prefetch", d.prefetch)

	d.consumer = mq.NewConsumer(d.conn, d.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueWorkflowSteps),
		Handler:  d.handleStep,
		Prefetch: d.prefetch,
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("step consumer error", "error", err)
		}
	}()

	d.logger.Info("dispatcher started")
	return nil
}

// Stop останавливает Dispatcher.
func (d *Dispatcher) Stop() {
	d.stoppedMu.Lock()
	d.stopped = true
	d.stoppedMu.Unlock()

	d.logger.Info("stopping dispatcher...")

	if d.cancelFunc != nil {
		d.cancelFunc()
	}

	if d.consumer != nil {
		d.consumer.Stop()
	}

	d.wg.Wait()

	d.logger.Info("dispatcher stopped")
}

// IsStopped проверяет, остановлен ли Dispatcher.
func (d *Dispatcher) IsStopped() bool {
	d.stoppedMu.RLock()
	defer d.stoppedMu.RUnlock()
	return d.stopped
}
