package petstore

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// FormFile is a file part of a multipart request.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Request is a single call against the store.
//
// Path may contain {placeholders} that are filled from PathParams. Body is
// JSON encoded unless Form or Files are set, in which case the request is
// form-urlencoded or multipart respectively. NoRetry asks the transport to
// return the first response as is; convergence reads set it so every status
// reaches the caller.
type Request struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      url.Values
	Form       url.Values
	Body       interface{}
	Files      []FormFile
	Headers    map[string]string
	NoRetry    bool
}

// Response is the raw result of a request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Sender performs requests against the store.
//
// A nil Response with a non-nil error means the request never produced an
// HTTP status (connection or protocol failure). A non-2xx status returns
// both the Response and an *APIError.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f SenderFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
