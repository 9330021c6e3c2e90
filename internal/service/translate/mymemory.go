package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultMyMemoryURL is the public MyMemory endpoint.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

// MyMemoryProvider implements Provider for the MyMemory REST API.
type MyMemoryProvider struct {
	baseURL string
	apiKey  string
	email   string
	client  *http.Client
}

// NewMyMemoryProvider creates a MyMemory provider. An empty baseURL selects the public endpoint.
func NewMyMemoryProvider(baseURL, apiKey, email string, client *http.Client) *MyMemoryProvider {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MyMemoryProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		email:   email,
		client:  client,
	}
}

func (p *MyMemoryProvider) Name() string {
	return ProviderMyMemory
}

// myMemoryStatus accepts responseStatus as either a number or a numeric string;
// the API uses both.
type myMemoryStatus int

func (s *myMemoryStatus) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("responseStatus %s: %w", data, err)
	}
	*s = myMemoryStatus(n)
	return nil
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseStatus  myMemoryStatus  `json:"responseStatus"`
	ResponseDetails json.RawMessage `json:"responseDetails"`
}

func (p *MyMemoryProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)
	if p.apiKey != "" {
		q.Set("key", p.apiKey)
	}
	if p.email != "" {
		q.Set("de", p.email)
	}

	sep := "?"
	if strings.Contains(p.baseURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+sep+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{Provider: p.Name(), Status: resp.StatusCode, Details: strings.TrimSpace(string(body))}
	}

	var data myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if data.ResponseStatus != http.StatusOK {
		return "", &StatusError{Provider: p.Name(), Status: int(data.ResponseStatus), Details: details(data.ResponseDetails)}
	}

	translated := html.UnescapeString(data.ResponseData.TranslatedText)
	if strings.TrimSpace(translated) == "" {
		return "", ErrEmptyResult
	}
	return translated, nil
}

// details flattens responseDetails, which is a string or an arbitrary JSON value.
func details(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
