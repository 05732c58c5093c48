package api

import (
	"log/slog"

	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/repo"
)

// Handler держит зависимости всех HTTP-обработчиков API: репозитории
// и publisher очереди шагов. Сами методы-обработчики разложены по
// файлам workflow_handler.go, run_handler.go, schedule_handler.go.
type Handler struct {
	workflowRepo *repo.WorkflowRepo
	runRepo      *repo.RunRepo
	scheduleRepo *repo.ScheduleRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
}

// NewHandler собирает Handler поверх репозиториев и publisher-а
// очереди шагов.
func NewHandler(
	workflows *repo.WorkflowRepo,
	runs *repo.RunRepo,
	schedules *repo.ScheduleRepo,
	publisher *mq.Publisher,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		workflowRepo: workflows,
		runRepo:      runs,
		scheduleRepo: schedules,
		publisher:    publisher,
		logger:       logger,
	}
}
