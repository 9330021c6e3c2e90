package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"relay/backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestRESTMessageRepository_Create(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/v1/messages", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("apikey"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "return=representation", r.Header.Get("Prefer"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":7,"message":"hallo","created_at":"2025-05-11T10:00:00.123456+00:00"}]`))
	}))
	defer server.Close()

	repo := repository.NewRESTMessageRepository(server.URL+"/", "secret", "messages", server.Client())
	msg, err := repo.Create(context.Background(), "hallo")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"message": "hallo"}, gotBody)
	require.Equal(t, int64(7), msg.ID)
	require.Equal(t, "hallo", msg.Text)
	require.Equal(t, 2025, msg.CreatedAt.Year())
}

func TestRESTMessageRepository_Create_StoreErrorVerbatim(t *testing.T) {
	const storeText = `{"code":"42P01","message":"relation \"public.messages\" does not exist"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(storeText))
	}))
	defer server.Close()

	repo := repository.NewRESTMessageRepository(server.URL, "secret", "messages", server.Client())
	_, err := repo.Create(context.Background(), "hallo")
	require.Error(t, err)

	var storeErr *repository.StoreError
	require.True(t, errors.As(err, &storeErr))
	require.Equal(t, http.StatusNotFound, storeErr.Status)
	require.Equal(t, storeText, storeErr.Body)
	require.Equal(t, storeText, err.Error())
}

func TestRESTMessageRepository_Create_UnreadableRepresentation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	repo := repository.NewRESTMessageRepository(server.URL, "secret", "messages", server.Client())
	msg, err := repo.Create(context.Background(), "hallo")
	require.NoError(t, err)
	require.Equal(t, "hallo", msg.Text)
}

func TestRESTMessageRepository_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		require.Equal(t, "created_at.desc", q.Get("order"))
		require.Equal(t, "1", q.Get("limit"))
		require.Equal(t, "id,message,created_at", q.Get("select"))
		_, _ = w.Write([]byte(`[{"id":2,"message":"Ich bin so aufgeregt","created_at":"2025-05-11T10:00:01"}]`))
	}))
	defer server.Close()

	repo := repository.NewRESTMessageRepository(server.URL, "secret", "messages", server.Client())
	messages, err := repo.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "Ich bin so aufgeregt", messages[0].Text)
	require.Equal(t, 1, messages[0].CreatedAt.Second())
	require.Equal(t, int64(2), messages[0].ID)
}

func TestRESTMessageRepository_Latest_UUIDKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"3f6c2a1e-9b7d-4c1a-8e2f-5d4b3a2c1b0f","message":"Ich bin so aufgeregt","created_at":"2025-01-02T03:04:05.123456+00:00"}]`))
	}))
	defer server.Close()

	repo := repository.NewRESTMessageRepository(server.URL, "secret", "messages", server.Client())
	messages, err := repo.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "Ich bin so aufgeregt", messages[0].Text)
	require.Zero(t, messages[0].ID)
	require.Equal(t, 2025, messages[0].CreatedAt.Year())
}

func TestRESTMessageRepository_Latest_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	repo := repository.NewRESTMessageRepository(server.URL, "secret", "messages", server.Client())
	messages, err := repo.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestRESTMessageRepository_Latest_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	repo := repository.NewRESTMessageRepository(server.URL, "bad", "messages", server.Client())

	_, err := repo.Latest(context.Background(), 1)
	var storeErr *repository.StoreError
	require.True(t, errors.As(err, &storeErr))
	require.Equal(t, http.StatusUnauthorized, storeErr.Status)
	require.Error(t, repo.Ping(context.Background()))

	server.Close()
	_, err = repo.Latest(context.Background(), 1)
	require.Error(t, err, "closed server must fail")
}
