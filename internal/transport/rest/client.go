package rest

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
	"time"

	"go.uber.org/zap"

	mdw "user-admin-console/internal/transport/http/middleware"
	resp "user-admin-console/internal/transport/http/response"
)

const (
	contentTypeJSON        = "application/json"
	defaultTimeout         = 10 * time.Second
	defaultReadLimit int64 = 1 << 20
)

var errBaseURLRequired = errors.New("api base url is required")

// TokenSource supplies a bearer token per request. An empty token sends no Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
func StaticToken(tok string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) { return tok, nil })
}

// Client turns JSON REST calls into (*Response, *Error) pairs. It never panics and never retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	headers     http.Header
	tokens      TokenSource
	middlewares []mdw.Middleware
	readLimit   int64
	log         *zap.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHeader adds a default header sent on every call.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMiddleware wraps the HTTP transport; the first middleware sees the request first.
func WithMiddleware(mws ...mdw.Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, mws...) }
}

func WithReadLimit(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.readLimit = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if u, err := url.Parse(trimmed); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}

	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    http.Header{},
		readLimit:  defaultReadLimit,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if len(c.middlewares) > 0 {
		hc := *c.httpClient
		hc.Transport = mdw.Chain(hc.Transport, c.middlewares...)
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one call. Body, when non-nil, is JSON encoded.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode parses the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Kind: KindDecode, Status: r.Status, Message: resp.MsgDecode, Err: err}
	}
	return nil
}

// Call performs exactly one HTTP request. Every failure comes back as *Error.
func (c *Client) Call(ctx context.Context, in Request) (*Response, error) {
	req, err := c.build(ctx, in)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api call failed",
			zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
		return nil, &Error{Kind: KindNetwork, Message: resp.MsgNetwork, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(res.Body, c.readLimit))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &Error{Kind: KindRejected, Status: res.StatusCode, Message: rejectionMessage(body)}
	}
	if readErr != nil {
		return nil, &Error{Kind: KindNetwork, Status: res.StatusCode, Message: resp.MsgNetwork, Err: readErr}
	}
	return &Response{Status: res.StatusCode, Header: res.Header, Body: body}, nil
}

// Do calls and decodes the body into a fresh T.
func Do[T any](ctx context.Context, c *Client, in Request) (*T, error) {
	res, err := c.Call(ctx, in)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := res.Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) build(ctx context.Context, in Request) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(in.Path, "/")
	if len(in.Query) > 0 {
		target += "?" + in.Query.Encode()
	}

	var body io.Reader
	if in.Body != nil {
		payload, err := json.Marshal(in.Body)
		if err != nil {
			return nil, &Error{Kind: KindRequest, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Message: "could not build request", Err: err}
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	mergeHeader(req.Header, c.headers)
	mergeHeader(req.Header, in.Header)

	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{Kind: KindRequest, Message: "could not obtain access token", Err: err}
		}
		if tok != "" && req.Header.Get("Authorization") == "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// mergeHeader replaces each key of src in dst; keys absent from src are kept.
func mergeHeader(dst, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func rejectionMessage(body []byte) string {
	var e resp.Error
	if err := json.Unmarshal(body, &e); err == nil && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return resp.MsgFallback
}
