package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// parseLevel читает LOG_LEVEL (без учёта регистра): DEBUG, INFO,
// WARN, ERROR. Нераспознанное значение трактуется как INFO.
func parseLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger создаёт логгер сервиса и делает его глобальным.
//
// LOG_FORMAT=text включает человекочитаемый вывод для разработки;
// всё остальное (включая пустое значение) — JSON для production.
// На уровне DEBUG в записи добавляется источник вызова.
func SetupLogger() *slog.Logger {
	level := parseLevel()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// Единые имена полей контекста выполнения. Сервисы не придумывают
// свои варианты вроде "workflow" или "wf_id" — по этим полям строятся
// дашборды и алерты.
const (
	FieldWorkflowID = "workflow_id"
	FieldRunID      = "run_id"
	FieldNodeID     = "node_id"
)

// WithWorkflowID добавляет workflow_id в логгер.
func WithWorkflowID(logger *slog.Logger, workflowID string) *slog.Logger {
	return logger.With(FieldWorkflowID, workflowID)
}

// WithRunID добавляет run_id в логгер.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(FieldRunID, runID)
}

// WithNodeID добавляет node_id в логгер.
func WithNodeID(logger *slog.Logger, nodeID string) *slog.Logger {
	return logger.With(FieldNodeID, nodeID)
}
