package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/boundary"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/notify"
)

// Client is a Bridge talking to a remote privileged side.
type Client struct {
	base    string
	token   string
	http    *http.Client
	stream  *http.Client
	timeout time.Duration
	logger  *slog.Logger

	subscribed atomic.Bool
}

var _ boundary.Bridge = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the client used for requests and the event stream.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
		c.stream = hc
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the server at baseURL (without the /api
// prefix). token is sent as a Bearer token when non-empty.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		base:    strings.TrimSuffix(baseURL, "/") + "/api",
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		stream:  &http.Client{},
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends a request and decodes a JSON answer into out when non-nil.
// Error answers are turned back into apperr sentinels.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(method, path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(method, path string, resp *http.Response) error {
	var body errResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)
	if body.Error == "" {
		body.Error = resp.Status
	}

	sentinel := apperr.FromKind(apperr.Kind(body.Kind))
	if sentinel == nil && resp.StatusCode == http.StatusUnauthorized {
		sentinel = apperr.ErrPermission
	}
	if sentinel == nil {
		return fmt.Errorf("api: %s %s: %s", method, path, body.Error)
	}
	return fmt.Errorf("api: %s %s: %s: %w", method, path, body.Error, sentinel)
}

func filePath(name string) string {
	return "/files/" + url.PathEscape(name)
}

// ShowDialog implements boundary.Bridge.
func (c *Client) ShowDialog(ctx context.Context) (string, error) {
	var resp DialogResponse
	if err := c.do(ctx, http.MethodPost, "/dialog", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Dir, nil
}

// ListFiles implements boundary.Bridge.
func (c *Client) ListFiles(ctx context.Context, dir string) ([]string, error) {
	var resp FileListResponse
	if err := c.do(ctx, http.MethodGet, "/files", url.Values{"dir": {dir}}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// ReadFile implements boundary.Bridge.
func (c *Client) ReadFile(ctx context.Context, name, dir string) (string, error) {
	var resp FileResponse
	if err := c.do(ctx, http.MethodGet, filePath(name), url.Values{"dir": {dir}}, nil, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// RenameFile implements boundary.Bridge.
func (c *Client) RenameFile(ctx context.Context, current, newName, dir string) (string, error) {
	var resp RenameResponse
	req := RenameRequest{Dir: dir, NewName: newName}
	if err := c.do(ctx, http.MethodPost, filePath(current)+"/rename", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Filename, nil
}

// OverwriteFile implements boundary.Bridge.
func (c *Client) OverwriteFile(ctx context.Context, content, name, dir string) error {
	return c.do(ctx, http.MethodPut, filePath(name), nil, WriteFileRequest{Dir: dir, Content: content}, nil)
}

// ShowContextMenu implements boundary.Bridge. Failures are only logged.
func (c *Client) ShowContextMenu(dir, filename string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		req := ContextMenuRequest{Dir: dir, Filename: filename}
		if err := c.do(ctx, http.MethodPost, "/context-menu", nil, req, nil); err != nil {
			c.logger.Warn("api: show context menu failed", slog.String("error", err.Error()))
		}
	}()
}

// ChooseMenuEntry implements boundary.Bridge.
func (c *Client) ChooseMenuEntry(ctx context.Context, menuID string, action models.Action) error {
	return c.do(ctx, http.MethodPost, "/context-menu/"+url.PathEscape(menuID), nil, MenuChoiceRequest{Action: action}, nil)
}

// Subscribe implements boundary.Bridge. It returns once the server has
// accepted the stream; the channel closes when the stream ends or ctx is
// cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan models.Notification, error) {
	if !c.subscribed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("api: subscribe: %w", apperr.ErrAlreadySubscribed)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/events", nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: subscribe: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(http.MethodGet, "/events", resp)
	}

	ch := make(chan models.Notification, 64)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		dec := notify.NewDecoder(resp.Body)
		for {
			n, err := dec.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					c.logger.Warn("api: event stream ended", slog.String("error", err.Error()))
				}
				return
			}
			select {
			case ch <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
