// Package rest implements quill.Transport over net/http.
//
// Two credential modes are supported. Plain API keys are attached
// directly, either as a bearer header or an api-key query parameter
// depending on the request's key position. Private API keys (prefixed
// "p_") are exchanged for a short-lived JWT at the auth endpoint; the
// token is cached and refreshed before expiry.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quillhq/quill"
)

// Interface compliance check.
var _ quill.Transport = (*Client)(nil)

const (
	defaultReaderURL  = "https://collections.orama.com"
	defaultAuthJWTURL = "https://app.orama.com/api/user/jwt"

	privateKeyPrefix = "p_"

	// jwtExpirySlack refreshes tokens slightly before the server-side
	// deadline to absorb clock skew.
	jwtExpirySlack = 30 * time.Second
)

// Client is an HTTP transport for the backend's reader and writer
// clusters.
type Client struct {
	apiKey       string
	collectionID string
	readerURL    string
	writerURL    string
	authJWTURL   string
	httpClient   *http.Client

	mu         sync.Mutex
	jwtToken   string
	jwtExpires time.Time
}

// Option configures a [Client].
type Option func(*Client)

// WithReaderURL overrides the reader cluster base URL.
func WithReaderURL(u string) Option {
	return func(c *Client) { c.readerURL = u }
}

// WithWriterURL sets the writer cluster base URL. Writer-targeted
// requests fail when unset.
func WithWriterURL(u string) Option {
	return func(c *Client) { c.writerURL = u }
}

// WithAuthJWTURL overrides the JWT exchange endpoint used for private
// API keys.
func WithAuthJWTURL(u string) Option {
	return func(c *Client) { c.authJWTURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a transport for the given collection and API key.
func New(collectionID, apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		collectionID: collectionID,
		readerURL:    defaultReaderURL,
		authJWTURL:   defaultAuthJWTURL,
		httpClient:   http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Request performs a one-shot JSON call and returns the raw response
// body.
func (c *Client) Request(ctx context.Context, req quill.ClientRequest) (json.RawMessage, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rest: read response: %w", err)
	}
	return json.RawMessage(raw), nil
}

// OpenStream issues the request and returns the raw response body for
// incremental consumption. The caller owns closing it.
func (c *Client) OpenStream(ctx context.Context, req quill.ClientRequest) (io.ReadCloser, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		return nil, fmt.Errorf("rest: no response body")
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, req quill.ClientRequest) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	keyInQuery := req.KeyPosition == quill.APIKeyInQueryParams
	writer := req.Target == quill.TargetWriter
	return c.doHTTP(ctx, method, req.Path, req.Body, req.Params, keyInQuery, writer)
}

func (c *Client) doHTTP(ctx context.Context, method, path string, body any, params url.Values, keyInQuery, writer bool) (*http.Response, error) {
	base := c.readerURL
	if writer {
		if c.writerURL == "" {
			return nil, fmt.Errorf("rest: no writer URL configured")
		}
		base = c.writerURL
	}

	u, err := url.Parse(base + path)
	if err != nil {
		return nil, fmt.Errorf("rest: %w", err)
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	cred, err := c.credential(ctx)
	if err != nil {
		return nil, err
	}
	if keyInQuery {
		q.Set("api-key", cred)
	}
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rest: encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("rest: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !keyInQuery {
		httpReq.Header.Set("Authorization", "Bearer "+cred)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rest: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

// credential returns the value to attach to the request: the API key
// itself, or a JWT obtained for a private key.
func (c *Client) credential(ctx context.Context) (string, error) {
	if !strings.HasPrefix(c.apiKey, privateKeyPrefix) {
		return c.apiKey, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jwtToken != "" && time.Now().Before(c.jwtExpires.Add(-jwtExpirySlack)) {
		return c.jwtToken, nil
	}

	payload, err := json.Marshal(map[string]string{
		"collection_id":   c.collectionID,
		"private_api_key": c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("rest: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authJWTURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("rest: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("rest: jwt exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", parseHTTPError(resp)
	}

	var token struct {
		JWT       string `json:"jwt"`
		ExpiresIn int    `json:"expires_in"` // seconds
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("rest: decode jwt response: %w", err)
	}
	if token.JWT == "" {
		return "", fmt.Errorf("rest: jwt exchange returned no token")
	}

	c.jwtToken = token.JWT
	if token.ExpiresIn > 0 {
		c.jwtExpires = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	} else {
		c.jwtExpires = time.Now().Add(5 * time.Minute)
	}
	return c.jwtToken, nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rest: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if jsonErr := json.Unmarshal(body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("rest: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("rest: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
