package handler

import (
	"context"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"relay/backend/internal/service"
)

// MaxMessageBytes caps the accepted request body.
const MaxMessageBytes = 64 << 10

type MessageHandler struct {
	service service.MessageService
}

func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/receive", h.Receive)
	g.GET("/response", h.Response)
	g.GET("/health", h.Health)
}

// Receive stores the raw request body as a message.
// @Summary Store a message
// @Description Store the raw UTF-8 request body as a new message
// @Tags messages
// @Accept plain
// @Produce json
// @Param message body string true "Message text"
// @Success 200 {object} statusResponse
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /receive [post]
func (h *MessageHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxMessageBytes+1))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request body")
	}
	status, payload := ReceivePayload(c.Request().Context(), h.service, body)
	return c.JSON(status, payload)
}

// Response translates the most recent message.
// @Summary Translate the latest message
// @Description Detect the language of the most recent message and translate it to the target language
// @Tags messages
// @Produce json
// @Success 200 {object} messagesResponse
// @Failure 503 {object} errorResponse
// @Router /response [get]
func (h *MessageHandler) Response(c echo.Context) error {
	status, payload := ResponsePayload(c.Request().Context(), h.service)
	return c.JSON(status, payload)
}

// Health reports whether the message store is reachable.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} statusResponse
// @Failure 503 {object} errorResponse
// @Router /health [get]
func (h *MessageHandler) Health(c echo.Context) error {
	status, payload := HealthPayload(c.Request().Context(), h.service)
	return c.JSON(status, payload)
}

// ReceivePayload stores body and returns the status and JSON body to answer with.
func ReceivePayload(ctx context.Context, svc service.MessageService, body []byte) (int, any) {
	if len(body) > MaxMessageBytes {
		return http.StatusRequestEntityTooLarge, errorResponse{Error: "message too large"}
	}
	if !utf8.Valid(body) {
		return http.StatusBadRequest, errorResponse{Error: "message must be UTF-8"}
	}
	if _, err := svc.Receive(ctx, string(body)); err != nil {
		return serviceError(err, true)
	}
	return http.StatusOK, statusResponse{Status: service.MsgStored}
}

// ResponsePayload translates the newest messages and returns the status and JSON body.
func ResponsePayload(ctx context.Context, svc service.MessageService) (int, any) {
	results, err := svc.Respond(ctx)
	if err != nil {
		return serviceError(err, false)
	}
	return http.StatusOK, messagesResponse{Messages: results}
}

// HealthPayload pings the store and returns the status and JSON body.
func HealthPayload(ctx context.Context, svc service.MessageService) (int, any) {
	if err := svc.Ping(ctx); err != nil {
		return serviceError(err, false)
	}
	return http.StatusOK, statusResponse{Status: "ok"}
}
