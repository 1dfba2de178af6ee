// Package request reads the request line of an HTTP request from a raw connection.
package request

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// BufferSize is the most that is read from a connection. Anything beyond it is
// never looked at, so a request line longer than this is truncated.
const BufferSize = 1000

// Kind classifies why a request could not be read.
type Kind int

const (
	Internal Kind = iota
	MethodNotAllowed
	BadRequest
)

func (k Kind) String() string {
	switch k {
	case MethodNotAllowed:
		return "method not allowed"
	case BadRequest:
		return "bad request"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code answered for k.
func (k Kind) Status() int {
	switch k {
	case MethodNotAllowed:
		return 405
	case BadRequest:
		return 400
	default:
		return 500
	}
}

// Message returns the reason phrase answered for k.
func (k Kind) Message() string {
	switch k {
	case MethodNotAllowed:
		return "Method not allowed"
	case BadRequest:
		return "BadRequest"
	default:
		return "Internal server error"
	}
}

// Error is returned by Read and Parse.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return Internal
}

// Request is the part of a request line the server acts on.
type Request struct {
	Method string
	Target string
}

// Read performs a single Read of at most BufferSize bytes from r and parses
// the result. It does not loop to fill the buffer.
func Read(r io.Reader) (*Request, error) {
	buf := make([]byte, BufferSize)
	n, err := r.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Kind: Internal, Err: err}
	}
	return Parse(buf[:n])
}

// Parse extracts the method and target from raw request bytes.
//
// The "GET" prefix is checked before tokenizing, then at least two
// whitespace-separated tokens are required, then the first token must be
// exactly "GET".
func Parse(b []byte) (*Request, error) {
	if _, _, err := transform.Bytes(encoding.UTF8Validator, b); err != nil {
		return nil, &Error{Kind: Internal, Err: err}
	}

	s := string(b)
	if !strings.HasPrefix(s, "GET") {
		return nil, &Error{Kind: MethodNotAllowed}
	}

	fields := strings.Fields(s)
	if len(fields) < 2 {
		return nil, &Error{Kind: BadRequest, Err: errors.New("request line has fewer than two tokens")}
	}
	if fields[0] != "GET" {
		return nil, &Error{Kind: MethodNotAllowed, Err: fmt.Errorf("method %q", fields[0])}
	}

	return &Request{Method: fields[0], Target: fields[1]}, nil
}
