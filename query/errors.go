package query

import (
	"errors"
	"fmt"
	"net"

	"github.com/realDragonium/mcquery/mc"
)

var (
	// ErrConnection means the connection to the server could not be opened.
	ErrConnection = errors.New("connection error")
	// ErrProtocol covers every framing or parsing violation in a response.
	ErrProtocol = errors.New("protocol error")
	// ErrTimeout means the server did not answer within the configured timeout.
	ErrTimeout = errors.New("timeout")
)

// Error is the failure returned by a query. Kind is one of ErrConnection,
// ErrProtocol or ErrTimeout and can be matched with errors.Is.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (err *Error) Error() string {
	if err.Err != nil && err.Err.Error() != err.Msg {
		return fmt.Sprintf("%v: %s (%v)", err.Kind, err.Msg, err.Err)
	}
	return fmt.Sprintf("%v: %s", err.Kind, err.Msg)
}

func (err *Error) Is(target error) bool {
	return err.Kind == target
}

func (err *Error) Unwrap() error {
	return err.Err
}

func connectionError(msg string, err error) error {
	return &Error{Kind: ErrConnection, Msg: msg, Err: err}
}

func protocolError(msg string, err error) error {
	return &Error{Kind: ErrProtocol, Msg: msg, Err: err}
}

func timeoutError(msg string, err error) error {
	return &Error{Kind: ErrTimeout, Msg: msg, Err: err}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readError classifies a failed read from the server.
func readError(err error) error {
	if isTimeout(err) {
		return timeoutError("server read timed out", err)
	}
	return protocolError("too few data", err)
}

func writeError(err error) error {
	if isTimeout(err) {
		return timeoutError("server write timed out", err)
	}
	return connectionError("sending request failed", err)
}

func varIntError(err error) error {
	if errors.Is(err, mc.ErrVarIntTooBig) {
		return protocolError(mc.ErrVarIntTooBig.Error(), err)
	}
	return readError(err)
}
