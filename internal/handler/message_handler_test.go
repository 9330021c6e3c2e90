package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"relay/backend/internal/handler"
	"relay/backend/internal/model"
	"relay/backend/internal/repository"
	"relay/backend/internal/repository/mock"
	"relay/backend/internal/service"
	"relay/backend/internal/service/detect"
	translatemock "relay/backend/internal/service/translate/mock"
)

type fixture struct {
	e        *echo.Echo
	messages *mock.MockMessageRepository
	provider *translatemock.MockProvider
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	messages := mock.NewMockMessageRepository(ctrl)
	provider := translatemock.NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()

	pipeline := service.NewPipeline(detect.NewKeywordDetector(), detect.DefaultOverrides(), provider, "en", time.Second)
	svc := service.NewMessageService(messages, pipeline, time.Second)

	e := echo.New()
	handler.NewMessageHandler(svc).RegisterRoutes(e.Group("/api"))
	return fixture{e: e, messages: messages, provider: provider}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestReceive_Stored(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().
		Create(gomock.Any(), "Ich bin so aufgeregt").
		Return(model.Message{ID: 1, Text: "Ich bin so aufgeregt"}, nil)

	rec := f.do(http.MethodPost, "/api/receive", "Ich bin so aufgeregt\n")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"Message stored"}`, rec.Body.String())
}

func TestReceive_Empty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/receive", "   ")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"No message provided"}`, rec.Body.String())
}

func TestReceive_StoreErrorVerbatim(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().
		Create(gomock.Any(), "hi").
		Return(model.Message{}, &repository.StoreError{Status: 401, Body: "Invalid API key"})

	rec := f.do(http.MethodPost, "/api/receive", "hi")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"error":"Invalid API key"}`, rec.Body.String())
}

func TestReceive_TooLarge(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/receive", strings.Repeat("a", handler.MaxMessageBytes+1))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReceive_InvalidUTF8(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/receive", "\xff\xfe")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResponse_EmptyStore(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().Latest(gomock.Any(), 1).Return(nil, nil)

	rec := f.do(http.MethodGet, "/api/response", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"messages":[{"response":"No messages found","original_language":"unknown"}]}`, rec.Body.String())
}

func TestResponse_Translated(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().
		Latest(gomock.Any(), 1).
		Return([]model.Message{{ID: 1, Text: "Ich bin so aufgeregt"}}, nil)
	f.provider.EXPECT().
		Translate(gomock.Any(), "Ich bin so aufgeregt", "de", "en").
		Return("I am so excited", nil)

	rec := f.do(http.MethodGet, "/api/response", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"messages":[{"response":"I am so excited","original_language":"de"}]}`, rec.Body.String())
}

func TestResponse_TranslationFailed(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().
		Latest(gomock.Any(), 1).
		Return([]model.Message{{ID: 1, Text: "Ich bin so aufgeregt"}}, nil)
	f.provider.EXPECT().
		Translate(gomock.Any(), "Ich bin so aufgeregt", "de", "en").
		Return("", errors.New("timeout"))

	rec := f.do(http.MethodGet, "/api/response", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"messages":[{"response":"[Translation failed] Ich bin so aufgeregt","original_language":"de"}]}`, rec.Body.String())
}

func TestResponse_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().
		Latest(gomock.Any(), 1).
		Return(nil, errors.New("connection refused"))

	rec := f.do(http.MethodGet, "/api/response", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"error":"connection refused"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().Ping(gomock.Any()).Return(nil)

	rec := f.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	f.messages.EXPECT().Ping(gomock.Any()).Return(errors.New("down"))
	rec = f.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
