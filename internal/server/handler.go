package server

import (
	"errors"
	"io/fs"
	"net"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/f4ah6o/webserver/internal/mimetype"
	"github.com/f4ah6o/webserver/internal/request"
	"github.com/f4ah6o/webserver/internal/response"
	"github.com/f4ah6o/webserver/internal/rewrite"
)

// exchange is the per-connection state threaded through the handler.
type exchange struct {
	id     string
	method string
	target string
	res    *response.Draft
}

// tag prefixes diagnostics: the connection id, then the request once known.
func (x *exchange) tag() string {
	if x.target == "" {
		return x.id
	}
	return x.id + " " + x.method + " " + x.target
}

// serveConn owns conn: it answers one request and closes it. A panic while
// handling is logged and answered with a 500 if nothing was written yet.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	x := &exchange{id: uuid.NewString(), res: response.New(conn, s.headers)}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.console.Errorf("%s: panic: %v\n%s", x.tag(), r, debug.Stack())
		s.console.Errorf("%s: An error occured: %v", x.tag(), r)
		if !x.res.Sent() {
			s.send(x, x.res.WithStatus(500).WithMessage("Internal server error"), "")
		}
	}()

	s.handle(conn, x)
}

func (s *Server) handle(conn net.Conn, x *exchange) {
	res := x.res
	req, err := request.Read(conn)
	if err != nil {
		kind := request.KindOf(err)
		if kind == request.Internal {
			s.console.Errorf("%s: Failed to process request.\nError:\n%v", x.tag(), err)
		}
		s.send(x, res.WithStatus(kind.Status()).WithMessage(kind.Message()), "")
		return
	}
	x.method, x.target = req.Method, req.Target

	s.console.Request(peerIP(conn.RemoteAddr()), req.Method, req.Target)

	if !s.allowTraversal && rewrite.HasDotDot(req.Target) {
		kind := request.BadRequest
		s.send(x, res.WithStatus(kind.Status()).WithMessage(kind.Message()), "")
		return
	}

	path := s.rewriter.Resolve(req.Target)
	body, err := s.readFile(path)
	switch {
	case err == nil:
		if err := res.SendBytes(body, response.Header{Name: "Content-Type", Value: mimetype.FromPath(path)}); err != nil {
			s.console.Errorf("%s: writing response: %v", x.tag(), err)
		}
	case errors.Is(err, fs.ErrNotExist):
		s.send(x, res.WithStatus(404).WithMessage("Not found"), "Resource not found")
	default:
		s.send(x, res.WithStatus(500).WithMessage("Internal server error."), "Failed to process the request.")
		s.console.Errorf("%s: reading %s: %v", x.tag(), path, err)
	}
}

// send writes res with a text body. A write failure ends the connection; it
// is logged and not retried.
func (s *Server) send(x *exchange, res *response.Draft, body string) {
	if err := res.SendText(body); err != nil {
		s.console.Errorf("%s: writing %d response: %v", x.tag(), res.Status(), err)
	}
}

func peerIP(addr net.Addr) string {
	switch a := addr.(type) {
	case nil:
		return "unknown"
	case *net.TCPAddr:
		return a.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
