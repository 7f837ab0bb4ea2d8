package converter

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies which stage of the conversion failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindParse
	KindTransform
	KindWrite
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindTransform:
		return "transform"
	case KindWrite:
		return "write"
	case KindCanceled:
		return "canceled"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyDataset = errors.New("no rows or columns could be inferred from the JSON payload")
	ErrTaskReused   = errors.New("conversion task has already run")
)

// KindOf reports the failure class of err. Errors caused by context
// cancellation are always KindCanceled.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
