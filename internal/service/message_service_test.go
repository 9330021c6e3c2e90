package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"relay/backend/internal/model"
	"relay/backend/internal/repository"
	"relay/backend/internal/repository/mock"
	"relay/backend/internal/service"
	"relay/backend/internal/service/detect"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMessageService_Receive_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	mockMessages.EXPECT().
		Create(gomock.Any(), "Hallo Welt").
		Return(model.Message{ID: 1, Text: "Hallo Welt"}, nil)

	msg, err := svc.Receive(context.Background(), "  Hallo Welt\n")
	require.NoError(t, err)
	require.Equal(t, int64(1), msg.ID)
}

func TestMessageService_Receive_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	// No Create expectation: an empty body must not reach the store.
	_, err := svc.Receive(context.Background(), " \t\n")
	require.ErrorIs(t, err, service.ErrEmptyInput)
}

func TestMessageService_Receive_StoreErrorVerbatim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	storeErr := &repository.StoreError{Status: 401, Body: `{"message":"Invalid API key"}`}
	mockMessages.EXPECT().
		Create(gomock.Any(), "hi").
		Return(model.Message{}, storeErr)

	_, err := svc.Receive(context.Background(), "hi")
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	require.Equal(t, `{"message":"Invalid API key"}`, err.Error())

	var target *repository.StoreError
	require.ErrorAs(t, err, &target)
	require.Equal(t, 401, target.Status)
}

func TestMessageService_Respond_EmptyStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	mockMessages.EXPECT().Latest(gomock.Any(), 1).Return(nil, nil)

	results, err := svc.Respond(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.TranslationResult{{Response: "No messages found", OriginalLanguage: "unknown"}}, results)
}

func TestMessageService_Respond_Translates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	provider := newProvider(ctrl)
	pipeline := service.NewPipeline(detect.NewKeywordDetector(), detect.DefaultOverrides(), provider, "en", time.Second)
	svc := service.NewMessageService(mockMessages, pipeline, time.Second)

	mockMessages.EXPECT().
		Latest(gomock.Any(), 1).
		Return([]model.Message{{ID: 7, Text: "Ich bin so aufgeregt"}}, nil)
	provider.EXPECT().
		Translate(gomock.Any(), "Ich bin so aufgeregt", "de", "en").
		Return("I am so excited", nil)

	results, err := svc.Respond(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.TranslationResult{{Response: "I am so excited", OriginalLanguage: "de"}}, results)
}

func TestMessageService_Respond_TranslationFailureMarked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	provider := newProvider(ctrl)
	pipeline := service.NewPipeline(detect.NewKeywordDetector(), detect.DefaultOverrides(), provider, "en", time.Second)
	svc := service.NewMessageService(mockMessages, pipeline, time.Second)

	mockMessages.EXPECT().
		Latest(gomock.Any(), 1).
		Return([]model.Message{{ID: 7, Text: "Das ist gut"}}, nil)
	provider.EXPECT().
		Translate(gomock.Any(), "Das ist gut", "de", "en").
		Return("", errors.New("status 429"))

	results, err := svc.Respond(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "[Translation failed] Das ist gut", results[0].Response)
	require.Equal(t, "de", results[0].OriginalLanguage)
}

func TestMessageService_Respond_EmptyRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	mockMessages.EXPECT().
		Latest(gomock.Any(), 1).
		Return([]model.Message{{ID: 3, Text: " "}}, nil)

	results, err := svc.Respond(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.TranslationResult{{Response: "Empty message", OriginalLanguage: "unknown"}}, results)
}

func TestMessageService_Respond_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	mockMessages.EXPECT().
		Latest(gomock.Any(), 1).
		Return(nil, errors.New("dial tcp: connection refused"))

	_, err := svc.Respond(context.Background())
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	require.Equal(t, "dial tcp: connection refused", err.Error())
}

func TestMessageService_Ping(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mock.NewMockMessageRepository(ctrl)
	svc := service.NewMessageService(mockMessages, nil, time.Second)

	mockMessages.EXPECT().Ping(gomock.Any()).Return(nil)
	require.NoError(t, svc.Ping(context.Background()))

	mockMessages.EXPECT().Ping(gomock.Any()).Return(errors.New("down"))
	require.ErrorIs(t, svc.Ping(context.Background()), service.ErrStoreUnavailable)
}
