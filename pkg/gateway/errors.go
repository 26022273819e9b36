package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindNetwork means no response was received: connection failure,
	// cancellation, or timeout.
	KindNetwork Kind = iota + 1
	// KindServer means the store answered with a non-2xx status.
	KindServer
	// KindDecode means a 2xx response body was malformed or missing
	// expected fields.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the uniform failure shape returned by every gateway call.
type Error struct {
	Kind      Kind
	Op        string // list, create, update_status, classify, stats
	Status    int    // HTTP status for KindServer, otherwise 0
	Message   string // server error text when present
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindServer && e.Message != "":
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Message)
	case e.Kind == KindServer:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a gateway error, or 0 if err is not one.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// IsKind reports whether err is a gateway error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
