package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?workflow_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{
		Limit:  parseIntParam(r, "limit", 50),
		Offset: parseIntParam(r, "offset", 0),
	}

	if wfIDStr := r.URL.Query().Get("workflow_id"); wfIDStr != "" {
		wfID, err := uuid.Parse(wfIDStr)
		if err != nil {
			BadRequest(w, "invalid workflow_id")
			return
		}
		filter.WorkflowID = &wfID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.RunStatus(status)
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// CreateRun запускает workflow: планирует очередь, создаёт run в
// статусе PENDING и публикует начальный ExecutionState в очередь
// продолжений. Первый шаг выполнит любой свободный диспетчер.
// POST /api/v1/workflows/{id}/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	wfID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflowRepo.GetByID(r.Context(), wfID)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	run := &domain.Run{
		ID:         uuid.New(),
		WorkflowID: wf.ID,
		UserID:     wf.UserID,
		Status:     domain.RunStatusPending,
		CreatedAt:  time.Now(),
	}

	state, err := engine.Plan(engine.PlanRequest{
		WorkflowID: wf.ID.String(),
		UserID:     wf.UserID,
		RunID:      run.ID.String(),
		Definition: wf.Definition,
	})
	if err != nil {
		// Сохранённый definition валидировался при создании, но мог
		// быть записан до ужесточения правил.
		BadRequest(w, err.Error())
		return
	}

	if err := h.runRepo.Create(r.Context(), run); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	if err := h.publisher.PublishWorkflowStep(r.Context(), state); err != nil {
		// Run уже создан; без начального сообщения он не стартует.
		h.logger.Error("failed to publish initial state", "run_id", run.ID, "error", err)
		run.MarkFailed("dispatch failed: "+err.Error(), nil)
		if uerr := h.runRepo.Update(r.Context(), run); uerr != nil {
			h.logger.Error("failed to mark run failed", "run_id", run.ID, "error", uerr)
		}
		InternalError(w, h.logger, err)
		return
	}

	telemetry.RunsStarted.WithLabelValues("api").Inc()

	Created(w, RunFromDomain(*run))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// CancelRun отменяет run. Текущий шаг, если он уже выполняется,
// довершится; остаток очереди диспетчер отбросит перед следующим шагом.
// POST /api/v1/runs/{id}/cancel
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	err = h.runRepo.Cancel(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}
