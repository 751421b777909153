// Package apperr tags failures with the kind of component that produced them.
// The HTTP layer is the single place that turns a tagged error into a response.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by origin.
type Kind string

const (
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
	KindGateway    Kind = "gateway"
)

// Error is a failure tagged with its Kind and the operation that raised it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation wraps a request validation failure.
func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// Storage wraps a failure of the durable medium.
func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// Gateway wraps a failure of the completion provider.
func Gateway(op string, err error) error {
	return &Error{Kind: KindGateway, Op: op, Err: err}
}

// KindOf returns the kind of the first tagged error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
