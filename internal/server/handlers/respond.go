package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/shelfsync/internal/server/storage"
	"github.com/iudanet/shelfsync/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// SendError отправляет JSON ответ с машинным кодом ошибки
func SendError(logger *slog.Logger, w http.ResponseWriter, statusCode int, code, message string) {
	SendErrorResponse(logger, w, statusCode, api.ErrorResponse{Error: code, Message: message})
}

// SendErrorResponse отправляет готовый ответ с ошибкой
func SendErrorResponse(logger *slog.Logger, w http.ResponseWriter, statusCode int, resp api.ErrorResponse) {
	sendJSON(logger, w, resp, statusCode)
}

// sendStorageError переводит ошибку хранилища в ответ
func sendStorageError(logger *slog.Logger, r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrZoneNotFound):
		SendError(logger, w, http.StatusNotFound, api.CodeZoneNotFound, "zone not found")
	case errors.Is(err, storage.ErrSubscriptionNotFound):
		SendError(logger, w, http.StatusNotFound, api.CodeSubscriptionNotFound, "subscription not found")
	case errors.Is(err, storage.ErrChangeTokenExpired):
		SendError(logger, w, http.StatusGone, api.CodeChangeTokenExpired, "change token expired, refetch from the beginning")
	default:
		logger.ErrorContext(r.Context(), "storage failure",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		SendError(logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
	}
}

// requireOwner возвращает владельца или отвечает 401
func requireOwner(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := GetOwnerFromContext(r.Context())
	if !ok {
		logger.WarnContext(r.Context(), "owner not found in context")
		SendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "unauthorized")
	}
	return owner, ok
}

// rejectInvalid отвечает 400 на первую ошибку проверки имён
func rejectInvalid(logger *slog.Logger, w http.ResponseWriter, errs ...error) bool {
	for _, err := range errs {
		if err != nil {
			SendError(logger, w, http.StatusBadRequest, api.CodeBadRequest, err.Error())
			return true
		}
	}
	return false
}
