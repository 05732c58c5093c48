package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, chain(fn))
	}

	// Workflows
	handle("GET /api/v1/workflows", h.ListWorkflows)
	handle("POST /api/v1/workflows", h.CreateWorkflow)
	handle("GET /api/v1/workflows/{id}", h.GetWorkflow)
	handle("PUT /api/v1/workflows/{id}", h.UpdateWorkflow)
	handle("DELETE /api/v1/workflows/{id}", h.DeleteWorkflow)
	handle("GET /api/v1/workflows/{id}/plan", h.PlanWorkflow)

	// Runs
	handle("GET /api/v1/runs", h.ListRuns)
	handle("POST /api/v1/workflows/{id}/runs", h.CreateRun)
	handle("GET /api/v1/runs/{id}", h.GetRun)
	handle("POST /api/v1/runs/{id}/cancel", h.CancelRun)

	// Schedules
	handle("GET /api/v1/schedules", h.ListSchedules)
	handle("POST /api/v1/workflows/{id}/schedules", h.CreateSchedule)
	handle("GET /api/v1/schedules/{id}", h.GetSchedule)
	handle("DELETE /api/v1/schedules/{id}", h.DeleteSchedule)
	handle("PUT /api/v1/schedules/{id}/enabled", h.SetScheduleEnabled)
}
