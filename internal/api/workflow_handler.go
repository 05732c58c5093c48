package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/repo"
)

// ListWorkflows возвращает список workflows.
// GET /api/v1/workflows?user_id=...&limit=...&offset=...
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	filter := repo.WorkflowFilter{
		UserID: r.URL.Query().Get("user_id"),
		Limit:  parseIntParam(r, "limit", 50),
		Offset: parseIntParam(r, "offset", 0),
	}

	workflows, err := h.workflowRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkflowResponse, len(workflows))
	for i, wf := range workflows {
		result[i] = WorkflowFromDomain(wf)
	}

	List(w, result, len(result))
}

// CreateWorkflow создаёт новый workflow.
// POST /api/v1/workflows
//
// Definition валидируется планировщиком до сохранения: пустой граф,
// дубли id, висячие рёбра и циклы отклоняются сразу.
func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	if _, err := engine.Plan(engine.PlanRequest{Definition: req.Definition}); err != nil {
		BadRequest(w, err.Error())
		return
	}

	now := time.Now()
	wf := &domain.Workflow{
		ID:         uuid.New(),
		Name:       req.Name,
		UserID:     req.UserID,
		Definition: req.Definition,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.workflowRepo.Create(r.Context(), wf); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, WorkflowFromDomain(*wf))
}

// GetWorkflow возвращает workflow по ID.
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflowRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	Success(w, WorkflowFromDomain(*wf))
}

// UpdateWorkflow обновляет имя и definition workflow.
// PUT /api/v1/workflows/{id}
func (h *Handler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	var req UpdateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	wf, err := h.workflowRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	if req.Name != nil {
		wf.Name = *req.Name
	}
	if req.Definition != nil {
		if _, err := engine.Plan(engine.PlanRequest{Definition: *req.Definition}); err != nil {
			BadRequest(w, err.Error())
			return
		}
		wf.Definition = *req.Definition
	}
	wf.UpdatedAt = time.Now()

	if err := h.workflowRepo.Update(r.Context(), wf); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, WorkflowFromDomain(*wf))
}

// DeleteWorkflow удаляет workflow.
// DELETE /api/v1/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	err = h.workflowRepo.Delete(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	NoContent(w)
}

// PlanWorkflow возвращает порядок выполнения definition без запуска.
// GET /api/v1/workflows/{id}/plan
func (h *Handler) PlanWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflowRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	state, err := engine.Plan(engine.PlanRequest{Definition: wf.Definition})
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	order := make([]string, 0, state.Remaining())
	for _, node := range state.Queue {
		order = append(order, node.ID)
	}

	Success(w, PlanResponse{Order: order})
}

// parseIntParam читает целочисленный query-параметр с дефолтом.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := json.Number(s).Int64()
	if err != nil {
		return defaultVal
	}
	return int(n)
}
