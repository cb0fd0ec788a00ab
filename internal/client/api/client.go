// Package api is a typed client for the GophChat REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/netx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/sethvargo/go-retry"
)

// listRetries is how many times a failed list fetch is retried.
const listRetries = 2

// AppendRequest mirrors the body of PUT /api/chats/:id.
type AppendRequest struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
	Img      string `json:"img,omitempty"`
}

// UploadParams mirrors the body of GET /api/upload.
type UploadParams struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
	Bucket    string    `json:"bucket"`
}

// StatusError is a non-2xx answer from the server. It unwraps to the
// matching sentinel from internal/common where one exists.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadRequest:
		return common.ErrValidation
	default:
		return nil
	}
}

type Client struct {
	baseURL    string
	http       *http.Client
	retryDelay time.Duration

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL. A nil httpClient means a client with a
// 30s timeout; a non-positive retryDelay means one second.
func New(baseURL string, httpClient *http.Client, retryDelay time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httpClient,
		retryDelay: retryDelay,
	}
}

// SetToken sets the bearer token sent with authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *string:
		*v = string(data)
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// errorMessage extracts "error" (and "details") from a JSON error body,
// falling back to the raw text.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return strings.TrimSpace(string(data))
	}
	if body.Details != "" {
		return body.Error + ": " + body.Details
	}
	return body.Error
}

// CreateChat starts a chat with text and returns its id.
func (c *Client) CreateChat(ctx context.Context, text string) (string, error) {
	var id string
	if err := c.do(ctx, http.MethodPost, "/api/chats", map[string]string{"text": text}, &id); err != nil {
		return "", err
	}
	return id, nil
}

// GetChat fetches one transcript. Missing and foreign chats unwrap to
// common.ErrorNotFound.
func (c *Client) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(id), nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// AppendTurns persists a finished exchange.
func (c *Client) AppendTurns(ctx context.Context, id string, req AppendRequest) (*models.UpdateResult, error) {
	var res models.UpdateResult
	if err := c.do(ctx, http.MethodPut, "/api/chats/"+url.PathEscape(id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteChat removes a chat and its index entry.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	var res struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/chats/"+url.PathEscape(id), nil, &res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New("delete not acknowledged")
	}
	return nil
}

// ListChats returns the caller's index. Failures are retried twice with a
// fixed delay; authentication failures are not retried.
func (c *Client) ListChats(ctx context.Context) ([]models.ChatIndexEntry, error) {
	var entries []models.ChatIndexEntry

	backoff := retry.WithMaxRetries(listRetries, retry.NewConstant(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		entries = nil
		err := c.do(ctx, http.MethodGet, "/api/userchats", nil, &entries)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ChatIndexEntry{}
	}
	return entries, nil
}

// UploadParams asks the server for presigned upload parameters.
func (c *Client) UploadParams(ctx context.Context) (*UploadParams, error) {
	var p UploadParams
	if err := c.do(ctx, http.MethodGet, "/api/upload", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadImage stores data in the media bucket and returns its key, which
// is what transcripts reference as "img".
func (c *Client) UploadImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	p, err := c.UploadParams(ctx)
	if err != nil {
		return "", fmt.Errorf("upload params: %w", err)
	}
	if err := netx.UploadToPresignedURL(ctx, c.http, p.URL, mimeType, data); err != nil {
		return "", err
	}
	return p.Key, nil
}
