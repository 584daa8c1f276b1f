package logapi

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

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// StreamLister fetches the names of the streams a server exposes.
type StreamLister interface {
	ListStreams(ctx context.Context) ([]string, error)
}

// Searcher runs one historical search.
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) ([]string, error)
}

// TailDialer opens a live subscription to a stream.
type TailDialer interface {
	DialTail(ctx context.Context, stream string) (TailConn, error)
}

// Ensure Client implements the interfaces at compile time.
var (
	_ StreamLister = (*Client)(nil)
	_ Searcher     = (*Client)(nil)
	_ TailDialer   = (*Client)(nil)
)

// Client talks to a log stream server over HTTP and websockets.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	dialer    *websocket.Dialer
	userAgent string
}

// Options configure a Client.
type Options struct {
	Server      string        // host:port or URL; empty uses the default
	Timeout     time.Duration // per-request timeout for list and search; zero uses the default
	Compression bool          // negotiate permessage-deflate on tail connections
}

const (
	defaultServer    = "127.0.0.1:5000"
	defaultUserAgent = "logscope/0.1"
	requestTimeout   = 10 * time.Second
	handshakeTimeout = 5 * time.Second
	acceptEncoding   = "zstd, gzip"
)

// NewClient builds a Client for the configured server.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.Server)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  handshakeTimeout,
			EnableCompression: opts.Compression,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the server's HTTP base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListStreams retrieves the names of the available streams.
func (c *Client) ListStreams(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []string
	if err := c.doURL(ctx, http.MethodGet, &url.URL{Path: "/api/streams"}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Search retrieves the lines of a stream that fall inside the query's range and,
// when a term is set, contain it.
func (c *Client) Search(ctx context.Context, query SearchQuery) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	stream := strings.TrimSpace(query.Stream)
	if stream == "" {
		return nil, fmt.Errorf("stream required")
	}
	values := url.Values{}
	values.Set("start", FormatTimestamp(query.Range.Start))
	values.Set("end", FormatTimestamp(query.Range.End))
	if query.HasTerm() {
		values.Set("term", strings.TrimSpace(query.Term))
	}
	rel := &url.URL{
		Path:     "/api/search_logs/" + stream,
		RawPath:  "/api/search_logs/" + url.PathEscape(stream),
		RawQuery: values.Encode(),
	}
	var payload []string
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.Path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	body, err := decodeBody(resp)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dest); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("decode response: %w", ctxErr)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// decodeBody undoes the Content-Encoding the server chose. Setting
// Accept-Encoding by hand disables the transport's transparent gzip, so every
// supported encoding is handled here.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open gzip body: %w", err)
		}
		return zr, nil
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open zstd body: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultServer
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return nil, fmt.Errorf("parse server %q: unsupported scheme %q", server, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse server %q: missing host", server)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// IsCanceled reports whether err came from the request's context being
// canceled rather than from the server or the network.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
