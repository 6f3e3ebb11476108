// Package remote talks to the post REST API.
package remote

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

	"github.com/starford/inkwell/internal/models"
)

const postsPath = "/api/posts"

// ErrRequestFailed matches every transport failure and non-2xx response.
var ErrRequestFailed = errors.New("remote: request failed")

// RequestError describes one failed call.
type RequestError struct {
	Method string
	Path   string
	Status int // 0 when no response arrived
	Err    error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("remote: %s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("remote: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("remote: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client issues CRUD calls for posts. It does not retry and sets no timeout of
// its own; callers bound a call through its context.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New creates a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		token: opts.Token,
		http:  hc,
	}
}

// wirePost is a post as the server sends it; the id may arrive as "_id" or "id".
type wirePost struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// normalize is the one place that maps the server's identifier field onto Post.ID.
func normalize(w wirePost) models.Post {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	return models.Post{ID: id, Title: w.Title, Date: w.Date, Content: w.Content}
}

// List fetches every post.
func (c *Client) List(ctx context.Context) ([]models.Post, error) {
	var wire []wirePost
	if err := c.do(ctx, http.MethodGet, postsPath, nil, &wire); err != nil {
		return nil, err
	}
	posts := make([]models.Post, len(wire))
	for i, w := range wire {
		posts[i] = normalize(w)
	}
	return posts, nil
}

// Create submits a new post and returns it as stored.
func (c *Client) Create(ctx context.Context, f models.Fields) (models.Post, error) {
	var wire wirePost
	if err := c.do(ctx, http.MethodPost, postsPath, f, &wire); err != nil {
		return models.Post{}, err
	}
	return normalize(wire), nil
}

func postPath(id string) string {
	return postsPath + "/" + url.PathEscape(id)
}

// Update replaces the editable fields of post id.
func (c *Client) Update(ctx context.Context, id string, f models.Fields) (models.Post, error) {
	var wire wirePost
	if err := c.do(ctx, http.MethodPut, postPath(id), f, &wire); err != nil {
		return models.Post{}, err
	}
	return normalize(wire), nil
}

// Delete removes post id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, postPath(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	fail := func(status int, err error) error {
		return &RequestError{Method: method, Path: path, Status: status, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(0, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fail(resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode: %w", err))
	}
	return nil
}
