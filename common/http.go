package common

// HttpResponse is the envelope of every portal API response.
type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// NewHttpResponse wraps a successful result.
func NewHttpResponse[T any](result T) HttpResponse[T] {
	return HttpResponse[T]{Result: &result}
}
