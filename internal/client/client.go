// Package client reads the quiz catalog from the HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

// Client implements catalog.Reader over HTTP.
type Client struct {
	base string
	http *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ catalog.Reader = (*Client)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) ListQuizzes(ctx context.Context) ([]catalog.QuizSummary, error) {
	var out []catalog.QuizSummary
	if err := c.get(ctx, "/quizzes", &out); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return out, nil
}

// GetQuizDetail fetches one quiz and validates it before handing it out.
func (c *Client) GetQuizDetail(ctx context.Context, examID string) (catalog.Quiz, error) {
	var q catalog.Quiz
	if err := c.get(ctx, "/quiz/"+url.PathEscape(examID), &q); err != nil {
		return catalog.Quiz{}, fmt.Errorf("get quiz %s: %w", examID, err)
	}
	if err := catalog.Validate(q); err != nil {
		return catalog.Quiz{}, err
	}
	return q, nil
}

func (c *Client) get(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return catalog.ErrNotFound
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if !env.Success || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if len(env.Data) == 0 {
		return errors.New("api: response has no data")
	}
	return json.Unmarshal(env.Data, into)
}
