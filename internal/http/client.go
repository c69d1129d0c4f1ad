package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Static errors for err113 compliance.
var (
	ErrMissingPathParam = errors.New("missing path parameter")
	ErrBodyConflict     = errors.New("request sets more than one of body, form and files")
)

// Request and Response are the transport's wire types.
type (
	Request  = petstore.Request
	Response = petstore.Response
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, req *http.Request) error
}

// Client is the HTTP transport. Only GET requests are retried; every other
// method is sent exactly once.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	auth       Authenticator
	logger     Logger
	debug      bool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output and retry diagnostics.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger == nil {
			return
		}

		c.logger = logger
		c.httpClient.Logger = &leveledLogger{logger: logger}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets how idempotent reads are retried.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient.HTTPClient = client
		}
	}
}

// NewClient creates a transport rooted at baseURL.
func NewClient(baseURL string, auth Authenticator, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.CheckRetry = readsOnly
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient,
		auth:       auth,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type (
	methodKey  struct{}
	noRetryKey struct{}
)

// readsOnly retries GET requests under the default policy and nothing else.
// Requests marked NoRetry are never retried.
func readsOnly(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if method, _ := ctx.Value(methodKey{}).(string); method != http.MethodGet {
		return false, nil
	}

	if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Send implements petstore.Sender.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, req)
}

// Do performs a request. A non-2xx status returns the response together with
// a *petstore.APIError; a failure without a status returns a nil response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	path, err := expandPath(req.Path, req.PathParams)
	if err != nil {
		return nil, err
	}

	fullURL := c.baseURL + path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, methodKey{}, req.Method)
	if req.NoRetry {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.auth != nil {
		if err := c.auth.Authenticate(ctx, httpReq.Request); err != nil {
			return nil, fmt.Errorf("authenticating request: %w", err)
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, petstore.ParseAPIError(httpResp.StatusCode, respBody)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostForm performs a form-encoded POST request.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// expandPath fills {placeholders} in path from params.
func expandPath(path string, params map[string]string) (string, error) {
	var out strings.Builder

	rest := path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}

		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			out.WriteString(rest)
			break
		}

		name := rest[open+1 : open+closing]

		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w: %s in %s", ErrMissingPathParam, name, path)
		}

		out.WriteString(rest[:open])
		out.WriteString(url.PathEscape(value))
		rest = rest[open+closing+1:]
	}

	return out.String(), nil
}

// encodeBody renders the request payload and returns its content type.
func encodeBody(req *Request) ([]byte, string, error) {
	kinds := 0
	if req.Body != nil {
		kinds++
	}

	if req.Form != nil && len(req.Files) == 0 {
		kinds++
	}

	if len(req.Files) > 0 {
		kinds++
	}

	if kinds > 1 {
		return nil, "", ErrBodyConflict
	}

	switch {
	case len(req.Files) > 0:
		return encodeMultipart(req.Form, req.Files)
	case req.Form != nil:
		return []byte(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}

		return data, "application/json", nil
	default:
		return nil, "", nil
	}
}

func encodeMultipart(fields url.Values, files []petstore.FormFile) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for name, values := range fields {
		for _, value := range values {
			if err := writer.WriteField(name, value); err != nil {
				return nil, "", fmt.Errorf("writing form field %s: %w", name, err)
			}
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file %s: %w", file.Field, err)
		}

		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copying %s: %w", file.Filename, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsOf(keysAndValues))
}

func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
