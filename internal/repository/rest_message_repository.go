package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"relay/backend/internal/model"
)

// maxErrorBody caps how much of a failed store response is kept.
const maxErrorBody = 64 << 10

// restTimeLayouts are the timestamp shapes PostgREST returns for timestamptz and timestamp columns.
var restTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
}

type restMessageRepository struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
}

// restSelect names the columns read back from the store. The id may be a bigint or a uuid.
const restSelect = "id,message,created_at"

type restRow struct {
	ID        json.RawMessage `json:"id"`
	Message   string          `json:"message"`
	CreatedAt string          `json:"created_at"`
}

// NewRESTMessageRepository creates a repository for a hosted PostgREST backend (Supabase).
// baseURL is the project URL without the /rest/v1 suffix.
func NewRESTMessageRepository(baseURL, apiKey, table string, client *http.Client) MessageRepository {
	return &restMessageRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
		client:  client,
	}
}

func (r *restMessageRepository) endpoint() string {
	return r.baseURL + "/rest/v1/" + url.PathEscape(r.table)
}

func (r *restMessageRepository) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (r *restMessageRepository) Create(ctx context.Context, text string) (model.Message, error) {
	payload, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return model.Message{}, err
	}

	req, err := r.newRequest(ctx, http.MethodPost, r.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return model.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := r.client.Do(req)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return model.Message{}, err
	}

	// The row is stored at this point; an unreadable representation is not an error.
	msg := model.Message{Text: text, CreatedAt: time.Now().UTC()}
	var rows []restRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err == nil && len(rows) > 0 {
		msg = rows[0].toModel()
	}
	return msg, nil
}

func (r *restMessageRepository) Latest(ctx context.Context, limit int) ([]model.Message, error) {
	q := url.Values{}
	q.Set("select", restSelect)
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))

	req, err := r.newRequest(ctx, http.MethodGet, r.endpoint()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var rows []restRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	messages := make([]model.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toModel())
	}
	return messages, nil
}

func (r *restMessageRepository) Ping(ctx context.Context) error {
	req, err := r.newRequest(ctx, http.MethodGet, r.endpoint()+"?select=*&limit=1", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StoreError{Status: resp.StatusCode, Body: string(body)}
}

func (row restRow) toModel() model.Message {
	m := model.Message{Text: row.Message}
	// Non-numeric keys leave ID zero.
	if id, err := strconv.ParseInt(string(row.ID), 10, 64); err == nil {
		m.ID = id
	}
	for _, layout := range restTimeLayouts {
		if t, err := time.Parse(layout, row.CreatedAt); err == nil {
			m.CreatedAt = t.UTC()
			break
		}
	}
	return m
}
