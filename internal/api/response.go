package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/Cascade/internal/repo"
)

// ErrorCode — машиночитаемый код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState  ErrorCode = "INVALID_STATE"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// Конверты ответов API. Успех — {"data": ...}, ошибка —
// {"error": {"code", "message"}}; клиенты различают их по ключу.
type (
	// DataResponse — успешный ответ с одним объектом.
	DataResponse struct {
		Data any `json:"data"`
	}

	// ListResponse — успешный ответ со списком и общим количеством.
	ListResponse struct {
		Data  any `json:"data"`
		Total int `json:"total,omitempty"`
	}

	// ErrorResponse — ответ с ошибкой.
	ErrorResponse struct {
		Error ErrorBody `json:"error"`
	}

	// ErrorBody — код и сообщение ошибки.
	ErrorBody struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}
)

// JSON кодирует ответ со статусом. Ошибка кодирования после записи
// заголовков уже не исправима, поэтому игнорируется.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Success отвечает 200 с данными в конверте.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Created отвечает 201 с созданным ресурсом.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, DataResponse{Data: data})
}

// NoContent отвечает 204 без тела.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List отвечает 200 со списком.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, ListResponse{Data: data, Total: total})
}

// Error отвечает ошибкой с заданным статусом и кодом.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// BadRequest — 400: невалидное тело или параметры запроса.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound — 404: ресурс не существует.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// InvalidState — 422: операция невозможна в текущем состоянии ресурса
// (например, отмена уже завершённого run-а).
func InvalidState(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, ErrCodeInvalidState, message)
}

// InternalError — 500; подробности остаются в логе, клиенту уходит
// обезличенное сообщение.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// HandleRepoError транслирует ошибку репозитория в HTTP-ответ.
// Возвращает true, если ответ записан (err != nil).
func HandleRepoError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, repo.ErrNotFound):
		NotFound(w, notFoundMsg)
	case errors.Is(err, repo.ErrInvalidState):
		InvalidState(w, err.Error())
	default:
		InternalError(w, logger, err)
	}
	return true
}
