package dinosaur

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2/json2"
)

// Fetcher defines the proxy calls the status poller depends on.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchConfig(ctx context.Context) (*UserConfig, error)
	FetchCacheEntries(ctx context.Context) ([]string, error)
	FetchBlockListCount(ctx context.Context) (int, error)
}

// Streamer opens the query log event stream.
type Streamer interface {
	Subscribe(ctx context.Context, opened func(), handle func(Event)) error
}

var (
	_ Fetcher  = (*Client)(nil)
	_ Streamer = (*Client)(nil)
)

// Client talks to the dinosaur proxy API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	stream    *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8553"
	defaultUserAgent = "dinotail/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided api-bind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		// The event stream stays open indefinitely; cancellation comes from ctx.
		stream:    &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalised proxy address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchConfig returns the proxy's user configuration.
func (c *Client) FetchConfig(ctx context.Context) (*UserConfig, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var cfg UserConfig
	if err := c.Call(ctx, "api.Config", struct{}{}, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchCacheEntries returns the proxy's cache dump, sorted.
func (c *Client) FetchCacheEntries(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var res cacheDebugResult
	if err := c.Call(ctx, "api.CacheDebug", struct{}{}, &res); err != nil {
		return nil, err
	}
	sort.Strings(res.Entries)
	return res.Entries, nil
}

// FetchBlockListCount returns the number of blocklist entries.
func (c *Client) FetchBlockListCount(ctx context.Context) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	var res blockListCountResult
	if err := c.Call(ctx, "api.BlockListCount", struct{}{}, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// Ping checks that the proxy API answers GET /ping with PONG.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	resp, err := c.send(ctx, c.http, http.MethodGet, &url.URL{Path: "/ping"}, "text/plain", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return fmt.Errorf("read ping: %w", err)
	}
	if got := strings.TrimSpace(string(body)); got != "PONG" {
		return fmt.Errorf("unexpected ping response %q", got)
	}
	return nil
}

// Call performs a JSON-RPC 2.0 request against POST /api and decodes the
// result into dest. A JSON-RPC error object is returned as *RPCError.
func (c *Client) Call(ctx context.Context, method string, params, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	resp, err := c.send(ctx, c.http, http.MethodPost, &url.URL{Path: "/api"}, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		var discard json.RawMessage
		dest = &discard
	}
	if err := json2.DecodeClientResponse(resp.Body, dest); err != nil {
		var jsonErr *json2.Error
		if errors.As(err, &jsonErr) {
			return &RPCError{Code: int(jsonErr.Code), Message: jsonErr.Message, Data: jsonErr.Data, Method: method}
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, hc *http.Client, method string, rel *url.URL, accept string, body io.Reader) (*http.Response, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	return resp, nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
