package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"relay/backend/internal/model"
	"relay/backend/internal/repository/mock"
	"relay/backend/internal/service"
)

func newTestServer(t *testing.T) (*server, *mock.MockMessageRepository) {
	ctrl := gomock.NewController(t)
	messages := mock.NewMockMessageRepository(ctrl)
	return newServer(service.NewMessageService(messages, nil, time.Second)), messages
}

func invoke(t *testing.T, s *server, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	t.Helper()
	event, err := json.Marshal(req)
	require.NoError(t, err)
	out, err := s.handleRequest(context.Background(), event)
	require.NoError(t, err)
	resp, ok := out.(events.APIGatewayProxyResponse)
	require.True(t, ok)
	return resp
}

func TestIsWarmupEvent(t *testing.T) {
	warmup, ok := IsWarmupEvent(json.RawMessage(`{"source":"warmup","concurrency":3}`))
	require.True(t, ok)
	require.Equal(t, 3, warmup.Concurrency)

	warmup, ok = IsWarmupEvent(json.RawMessage(`{"source":"warmup"}`))
	require.True(t, ok)
	require.Zero(t, warmup.Concurrency)

	_, ok = IsWarmupEvent(json.RawMessage(`{"source":"aws.events"}`))
	require.False(t, ok)

	_, ok = IsWarmupEvent(json.RawMessage(`{"httpMethod":"GET","path":"/api/response"}`))
	require.False(t, ok)

	_, ok = IsWarmupEvent(json.RawMessage(`not json`))
	require.False(t, ok)
}

func TestHandleRequest_WarmupSkipsStore(t *testing.T) {
	// The mock has no expectations: touching the store fails the test.
	s, _ := newTestServer(t)

	out, err := s.handleRequest(context.Background(), json.RawMessage(`{"source":"warmup"}`))
	require.NoError(t, err)
	resp := out.(events.APIGatewayProxyResponse)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"warm","instancesWarmed":1}`, resp.Body)
}

type fakeInvoker struct {
	calls atomic.Int32
	err   error
}

func (f *fakeInvoker) Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	f.calls.Add(1)
	var child WarmupEvent
	if err := json.Unmarshal(params.Payload, &child); err != nil || child.Concurrency != 0 {
		return nil, errors.New("child warmup must not fan out")
	}
	return &lambdasdk.InvokeOutput{}, f.err
}

func TestHandleWarmup_SelfInvoke(t *testing.T) {
	fake := &fakeInvoker{}
	orig := newInvoker
	newInvoker = func(context.Context) (invoker, error) { return fake, nil }
	defer func() { newInvoker = orig }()

	resp, err := HandleWarmup(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 3})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"warm","instancesWarmed":4}`, resp.Body)
	require.EqualValues(t, 3, fake.calls.Load())

	fake.err = errors.New("throttled")
	resp, err = HandleWarmup(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"warm","instancesWarmed":1}`, resp.Body)
}

func TestRoute_Receive(t *testing.T) {
	s, messages := newTestServer(t)
	messages.EXPECT().
		Create(gomock.Any(), "Hallo zusammen").
		Return(model.Message{ID: 1, Text: "Hallo zusammen"}, nil).
		Times(2)

	resp := invoke(t, s, events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/api/receive", Body: "Hallo zusammen"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"Message stored"}`, resp.Body)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])

	resp = invoke(t, s, events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/receive/",
		Body:            base64.StdEncoding.EncodeToString([]byte("Hallo zusammen")),
		IsBase64Encoded: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoute_ReceiveEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	resp := invoke(t, s, events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/api/receive"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.JSONEq(t, `{"error":"No message provided"}`, resp.Body)
}

func TestRoute_ResponseEmptyStore(t *testing.T) {
	s, messages := newTestServer(t)
	messages.EXPECT().Latest(gomock.Any(), 1).Return(nil, nil)

	resp := invoke(t, s, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/response"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"messages":[{"response":"No messages found","original_language":"unknown"}]}`, resp.Body)
}

func TestRoute_NotFoundAndMethod(t *testing.T) {
	s, _ := newTestServer(t)

	resp := invoke(t, s, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/other"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = invoke(t, s, events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete, Path: "/api/response"})
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
