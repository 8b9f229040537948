package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/withstack"
)

// PublicError is an error whose message is safe to show to the end user.
// The portal error handler and the CLI surface Message() instead of the internal error chain.
type PublicError struct {
	err     error
	message string
	code    string // optional, identifies the error for presentation layers
}

func (p PublicError) Error() string {
	return p.err.Error()
}

func (p PublicError) Message() string {
	return p.message
}

func (p PublicError) Code() string {
	return p.code
}

func (p PublicError) Unwrap() error {
	return p.err
}

func NewPublicError(message string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message}, 1)
}

func NewPublicErrorWithCode(message string, code string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message, code: code}, 1)
}

// WithPublicMessage marks err as user-visible. The message is prefixed when prefix is not empty.
func WithPublicMessage(err error, prefix string) error {
	return WithPublicMessageCode(err, prefix, "")
}

func WithPublicMessageCode(err error, prefix string, code string) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if prefix != "" {
		message = fmt.Sprintf("%s: %s", prefix, message)
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message, code: code}, 1)
}
