package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики диспетчеризации. Регистрируются в default registry,
// экспортируются через promhttp на /metrics.
var (
	// StepsTotal — количество выполненных шагов по типу блока и исходу.
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cascade",
		Name:      "steps_total",
		Help:      "Executed workflow steps by block type and outcome.",
	}, []string{"block_type", "outcome"})

	// StepDuration — длительность выполнения шага по типу блока.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cascade",
		Name:      "step_duration_seconds",
		Help:      "Workflow step execution duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"block_type"})

	// RunsCompleted — завершённые runs по финальному статусу.
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cascade",
		Name:      "runs_completed_total",
		Help:      "Completed workflow runs by final status.",
	}, []string{"status"})

	// RunsStarted — созданные runs по источнику (api, schedule).
	RunsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cascade",
		Name:      "runs_started_total",
		Help:      "Started workflow runs by origin.",
	}, []string{"origin"})

	// StepsDLQ — шаги, ушедшие в dead letter queue.
	StepsDLQ = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cascade",
		Name:      "steps_dead_lettered_total",
		Help:      "Step messages rejected to the dead letter queue.",
	})
)

// Значения для метки outcome у StepsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
