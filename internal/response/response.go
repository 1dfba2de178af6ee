// Package response assembles HTTP/1.1 responses and writes them to a connection.
//
// The wire format uses a bare "\n" as line terminator:
//
//	HTTP/1.1 <status> <message>\n
//	<name>: <value>\n
//	\n
//	<body>
package response

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

// Header is a single response header. Names are neither validated nor deduplicated.
type Header struct {
	Name  string
	Value string
}

// ErrAlreadySent is returned when a Draft is sent a second time.
var ErrAlreadySent = errors.New("response already sent")

type flusher interface {
	Flush() error
}

// Draft is a response under construction for exactly one connection.
// It is not safe for concurrent use.
type Draft struct {
	w       io.Writer
	status  int
	message string
	headers []Header
	sent    bool
}

// New returns a 200 OK draft that writes to w, seeded with base headers.
// base is never modified; headers added later go to a private copy.
func New(w io.Writer, base []Header) *Draft {
	return &Draft{
		w:       w,
		status:  200,
		message: "OK",
		headers: base[:len(base):len(base)],
	}
}

// WithStatus sets the status code. The code is not range checked.
func (d *Draft) WithStatus(code int) *Draft {
	d.status = code
	return d
}

// WithMessage sets the reason phrase of the status line.
func (d *Draft) WithMessage(msg string) *Draft {
	d.message = msg
	return d
}

// WithHeaders appends headers after those already present.
func (d *Draft) WithHeaders(hs ...Header) *Draft {
	d.headers = append(d.headers, hs...)
	return d
}

// Status returns the status code currently set.
func (d *Draft) Status() int { return d.status }

// Sent reports whether a Send method has been called.
func (d *Draft) Sent() bool { return d.sent }

// SendText writes the response with a string body.
func (d *Draft) SendText(body string, extra ...Header) error {
	return d.SendBytes([]byte(body), extra...)
}

// SendBytes appends extra headers, serializes the response and writes it with
// a single Write, flushing w afterwards if it supports that. The draft is
// consumed even when the write fails.
func (d *Draft) SendBytes(body []byte, extra ...Header) error {
	if d.sent {
		return ErrAlreadySent
	}
	d.sent = true
	d.WithHeaders(extra...)

	if _, err := d.w.Write(Build(d.status, d.message, d.headers, body)); err != nil {
		return err
	}
	if f, ok := d.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Build serializes a response without writing it anywhere.
func Build(status int, message string, headers []Header, body []byte) []byte {
	size := len("HTTP/1.1 000 \n\n") + len(message) + len(body)
	for _, h := range headers {
		size += len(h.Name) + len(h.Value) + 3
	}

	var buf bytes.Buffer
	buf.Grow(size)
	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(status))
	buf.WriteByte(' ')
	buf.WriteString(message)
	buf.WriteByte('\n')
	for _, h := range headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes()
}
