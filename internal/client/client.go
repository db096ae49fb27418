// Package client is a typed HTTP client for the library API.
//
// Every request carries "Authorization: Bearer <token>" when the configured
// credential slot holds one. There is no retry and no caching; a failed call
// returns an *APIError or a transport error and the caller decides what to
// show.
//
//	c, err := client.New("http://localhost:8188", client.WithCredentials(store))
//	books, err := c.Books().GetAll(ctx)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mrlokans/library/internal/credentials"
)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	creds      credentials.Store

	books *BooksService
	auth  *AuthService
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. to add a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCredentials sets where the bearer token is read from and stored.
func WithCredentials(store credentials.Store) Option {
	return func(c *Client) {
		c.creds = store
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		creds:      credentials.NewMemoryStore(""),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.books = &BooksService{client: c}
	c.auth = &AuthService{client: c}
	return c, nil
}

func (c *Client) Books() *BooksService {
	return c.books
}

func (c *Client) Auth() *AuthService {
	return c.auth
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends body as JSON and decodes a 2xx response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
