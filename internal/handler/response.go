package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"relay/backend/internal/logger"
	"relay/backend/internal/model"
	"relay/backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type messagesResponse struct {
	Messages []model.TranslationResult `json:"messages"`
}

// serviceError maps a service error to a status for the given operation.
// Store failures answer 502 on writes and 503 on reads, carrying the store's text.
func serviceError(err error, write bool) (int, errorResponse) {
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		return http.StatusBadRequest, errorResponse{Error: service.MsgNoMessageProvided}
	case errors.Is(err, service.ErrStoreUnavailable):
		if write {
			return http.StatusBadGateway, errorResponse{Error: err.Error()}
		}
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error()}
	default:
		logger.Error("unhandled service error", "module", "handler", "action", "request", "resource", "message", "result", "failed", "error", err)
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
