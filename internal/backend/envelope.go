package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/pkg/httpclient"
	"github.com/valyala/fasthttp"
)

// APIError is a failure reported by the control daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("control api error (status %d): %s", e.StatusCode, e.Message)
}

type txHashValue struct {
	Value string `json:"value"`
}

// envelope is the response body of every control daemon endpoint.
type envelope struct {
	Success  *bool           `json:"success"`
	Message  string          `json:"message"`
	Error    string          `json:"error"`
	Response json.RawMessage `json:"response"`
	TxHash   *txHashValue    `json:"txHash"`
}

// envelopeDecoder is implemented by responses read from the envelope itself
// rather than from its response field.
type envelopeDecoder interface {
	decodeEnvelope(env envelope) error
}

// Get issues a GET request and decodes the envelope response into T.
func Get[T any](ctx context.Context, client *httpclient.Client, path string) Result[T] {
	return call[T](ctx, client, fasthttp.MethodGet, path, nil, nil)
}

// Post issues a POST request with a JSON body and decodes the envelope response into T.
func Post[T any](ctx context.Context, client *httpclient.Client, path string, body any, headers map[string]string) Result[T] {
	return call[T](ctx, client, fasthttp.MethodPost, path, body, headers)
}

func call[T any](ctx context.Context, client *httpclient.Client, method, path string, body any, headers map[string]string) Result[T] {
	opts := httpclient.RequestOptions{Header: headers}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Fail[T](errors.Wrap(err, "can't marshal request body"))
		}
		opts.Body = raw
	}

	resp, err := client.Do(ctx, method, path, opts)
	if err != nil {
		return Fail[T](transportError(err))
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return Fail[T](err)
	}

	var out T
	if d, ok := any(&out).(envelopeDecoder); ok {
		if err := d.decodeEnvelope(env); err != nil {
			return Fail[T](err)
		}
		return Ok(out)
	}
	if len(env.Response) > 0 && string(env.Response) != "null" {
		if err := json.Unmarshal(env.Response, &out); err != nil {
			return Fail[T](&APIError{
				StatusCode: resp.StatusCode(),
				Message:    "malformed response: " + err.Error(),
			})
		}
	}
	return Ok(out)
}

func decodeEnvelope(resp *httpclient.HttpResponse) (envelope, error) {
	var env envelope
	decodeErr := resp.UnmarshalBody(&env)

	if !resp.IsSuccess() {
		message := firstNonEmpty(env.Error, env.Message, http.StatusText(resp.StatusCode()))
		return envelope{}, errors.WithStack(&APIError{StatusCode: resp.StatusCode(), Message: message})
	}
	if decodeErr != nil {
		return envelope{}, errors.WithStack(&APIError{StatusCode: resp.StatusCode(), Message: "malformed response: " + decodeErr.Error()})
	}
	if env.Error != "" || (env.Success != nil && !*env.Success) {
		message := firstNonEmpty(env.Error, env.Message, "request was not successful")
		return envelope{}, errors.WithStack(&APIError{StatusCode: resp.StatusCode(), Message: message})
	}
	return env, nil
}

// transportError marks connection failures as unavailable and keeps
// cancellation and timeouts as they are.
func transportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, errs.Timeout):
		return err
	}
	return errors.WithSecondaryError(errors.Wrapf(errs.Unavailable, "control api unreachable: %v", err), err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
