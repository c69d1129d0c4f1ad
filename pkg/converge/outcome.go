package converge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// OutcomeKind tags the result of one attempt.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeTransient
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransient:
		return "transient"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the classified result of one request. A transport failure is a
// Fatal outcome with StatusCode 0 and Err set.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       []byte
	Err        error
}

// Success returns a successful outcome carrying payload.
func Success(payload []byte) Outcome {
	return Outcome{Kind: OutcomeSuccess, StatusCode: http.StatusOK, Body: payload}
}

// NotFound returns a not-found outcome.
func NotFound(body []byte) Outcome {
	return Outcome{Kind: OutcomeNotFound, StatusCode: http.StatusNotFound, Body: body}
}

// Transient returns an outcome expected to resolve on retry.
func Transient(statusCode int, body []byte) Outcome {
	return Outcome{Kind: OutcomeTransient, StatusCode: statusCode, Body: body}
}

// Fatal returns an outcome that retrying will not fix.
func Fatal(statusCode int, body []byte) Outcome {
	return Outcome{Kind: OutcomeFatal, StatusCode: statusCode, Body: body}
}

// Failed returns the Fatal outcome of a request that produced no status.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFatal, Err: err}
}

// IsSuccess reports whether the outcome is Success.
func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// IsNotFound reports whether the outcome is NotFound.
func (o Outcome) IsNotFound() bool { return o.Kind == OutcomeNotFound }

// IsFatal reports whether the outcome is Fatal.
func (o Outcome) IsFatal() bool { return o.Kind == OutcomeFatal }

// Decode unmarshals the outcome body into v.
func (o Outcome) Decode(v interface{}) error {
	if err := json.Unmarshal(o.Body, v); err != nil {
		return fmt.Errorf("decoding %s outcome: %w", o.Kind, err)
	}

	return nil
}

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	case o.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", o.Kind, o.StatusCode)
	default:
		return o.Kind.String()
	}
}

// ClassifyRead classifies a fetch-by-id: 200 is Success, 404 is NotFound and
// everything else, including a transport failure, is Fatal.
func ClassifyRead(resp *petstore.Response, err error) Outcome {
	if resp == nil {
		return Failed(transportCause(err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return Success(resp.Body)
	case http.StatusNotFound:
		return NotFound(resp.Body)
	default:
		return Fatal(resp.StatusCode, resp.Body)
	}
}

// ClassifyMutation classifies a create or update: only 200 is Success.
func ClassifyMutation(resp *petstore.Response, err error) Outcome {
	if resp == nil {
		return Failed(transportCause(err))
	}

	if resp.StatusCode == http.StatusOK {
		return Success(resp.Body)
	}

	return Fatal(resp.StatusCode, resp.Body)
}

// ClassifyDelete classifies a delete: 200 is Success and 404 is NotFound,
// both of which satisfy an idempotent delete. Anything else is Fatal.
func ClassifyDelete(resp *petstore.Response, err error) Outcome {
	return ClassifyRead(resp, err)
}

func transportCause(err error) error {
	if err == nil {
		return ErrEmptyResponse
	}

	return err
}

// decodeObject decodes a JSON object keeping numbers exact; store ids exceed
// float64 precision.
func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}

	if obj == nil {
		return nil, ErrNotAnObject
	}

	return obj, nil
}
