// Package server accepts TCP connections and answers each one with a static
// file, one request per connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/f4ah6o/webserver/internal/config"
	"github.com/f4ah6o/webserver/internal/console"
	"github.com/f4ah6o/webserver/internal/response"
	"github.com/f4ah6o/webserver/internal/rewrite"
)

// Name is how the server introduces itself on startup.
const Name = config.DefaultHeaderValue

// Server holds the read-only state shared by every connection.
type Server struct {
	addr           string
	headers        []response.Header
	rewriter       rewrite.Rewriter
	workers        int
	allowTraversal bool
	console        *console.Printer

	// Reads the resolved path. Can be mocked.
	readFile func(string) ([]byte, error)
}

// New returns a Server for cfg that logs through p.
func New(cfg *config.Config, p *console.Printer) *Server {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Server{
		addr:           cfg.Addr(),
		headers:        cfg.Headers,
		rewriter:       rewrite.Rewriter{Prefix: cfg.Prefix, BasePath: cfg.BasePath},
		workers:        workers,
		allowTraversal: cfg.AllowTraversal,
		console:        p,
		readFile:       os.ReadFile,
	}
}

// ListenAndServe binds the configured address and serves until ctx is done.
// A bind failure is reported and returned; the caller is expected to exit.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.console.Errorf("Failed to setup server on %s.\nError: %v", s.addr, err)
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.console.Listening(Name, s.addr)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or ln is closed.
//
// At most s.workers connections are open at a time. With one worker the next
// connection is not accepted before the previous one has been answered and
// closed. Accept errors are logged and skipped, with a capped backoff while
// they repeat. When ctx is done Serve closes ln, expires the deadlines of
// open connections so stalled clients cannot hold it, waits for them and
// returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ln = netutil.LimitListener(ln, s.workers)
	defer ln.Close()

	var open connSet
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		open.expire()
	})
	defer stop()

	var eg errgroup.Group
	eg.SetLimit(s.workers)
	defer eg.Wait()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.console.Errorf("Error: %v", err)
			delay = nextDelay(delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0

		if !open.add(conn) {
			conn.Close()
			continue
		}
		eg.Go(func() error {
			defer open.remove(conn)
			s.serveConn(conn)
			return nil
		})
	}
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// nextDelay doubles the wait after a failed Accept, from minAcceptDelay up to
// maxAcceptDelay.
func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	if d *= 2; d > maxAcceptDelay {
		return maxAcceptDelay
	}
	return d
}

// connSet tracks the connections being served.
type connSet struct {
	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	expired bool
}

// add registers conn. It reports false once expire has been called.
func (c *connSet) add(conn net.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired {
		return false
	}
	if c.conns == nil {
		c.conns = make(map[net.Conn]struct{})
	}
	c.conns[conn] = struct{}{}
	return true
}

func (c *connSet) remove(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn)
}

// expire makes pending and future I/O on every tracked connection fail.
func (c *connSet) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired = true
	now := time.Now()
	for conn := range c.conns {
		conn.SetDeadline(now)
	}
}
