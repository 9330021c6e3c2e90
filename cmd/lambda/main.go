// Package main serves the message API from AWS Lambda behind an API Gateway proxy
// integration.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"relay/backend/internal/app"
	"relay/backend/internal/config"
	"relay/backend/internal/handler"
	"relay/backend/internal/logger"
	"relay/backend/internal/service"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Error("config load failed", "module", "lambda", "action", "init", "resource", "config", "result", "failed", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.ParseLevel(cfg.Log.Level), "json")

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Error("app init failed", "module", "lambda", "action", "init", "resource", "app", "result", "failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	lambda.Start(newServer(a.Service).handleRequest)
}

type server struct {
	svc service.MessageService
}

func newServer(svc service.MessageService) *server {
	return &server{svc: svc}
}

func (s *server) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup events never reach the store.
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}
	return s.route(ctx, req), nil
}

func (s *server) route(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	path := strings.TrimSuffix(req.Path, "/")

	var allowed string
	switch path {
	case "/api/receive":
		allowed = http.MethodPost
	case "/api/response", "/api/health":
		allowed = http.MethodGet
	default:
		return jsonResponse(http.StatusNotFound, map[string]string{"error": "Not Found"})
	}
	if req.HTTPMethod != allowed {
		return jsonResponse(http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	}

	var status int
	var payload any
	switch path {
	case "/api/receive":
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			}
			body = decoded
		}
		status, payload = handler.ReceivePayload(ctx, s.svc, body)
	case "/api/response":
		status, payload = handler.ResponsePayload(ctx, s.svc)
	default:
		status, payload = handler.HealthPayload(ctx, s.svc)
	}
	return jsonResponse(status, payload)
}

func jsonResponse(status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
