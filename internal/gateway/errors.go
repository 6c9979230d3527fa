package gateway

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoJSON         = errors.New("no JSON object found in reply")
	ErrEmptyReply     = errors.New("empty reply")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrSchema         = errors.New("reply does not match the expected shape")
)

// Error is the only error type that leaves the gateway. Request names the
// generation request that failed and Reason classifies the failure.
type Error struct {
	Request string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Request, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(request string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return err
	}
	return &Error{Request: request, Reason: reasonFor(err), Err: err}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrUpstreamStatus):
		return "upstream status"
	case errors.Is(err, ErrEmptyReply):
		return "empty reply"
	case errors.Is(err, ErrNoJSON):
		return "no json"
	case errors.Is(err, ErrSchema):
		return "schema"
	}
	return "transport"
}
