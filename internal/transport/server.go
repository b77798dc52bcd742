// Package transport exposes the broadcast registry over WebSocket.
//
// Every HTTP request is upgraded; there are no other routes. Each accepted
// connection becomes a Conn observer that lives until the peer closes,
// a write fails, or the keepalive times out.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rileyhilliard/gatewatch/internal/broadcast"
	gwerrors "github.com/rileyhilliard/gatewatch/internal/errors"
	"github.com/rileyhilliard/gatewatch/internal/logger"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// Server upgrades connections and registers them with a broadcast.Registry.
type Server struct {
	reg       *broadcast.Registry
	log       logger.Logger
	upgrader  websocket.Upgrader
	keepalive time.Duration

	mu      sync.Mutex
	conns   map[*Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the connection logger.
func WithLogger(l logger.Logger) Option { return func(s *Server) { s.log = l } }

// WithKeepalive sets how long a client may go without answering a ping
// before it is dropped. Pings are sent at 9/10 of d. Non-positive values
// keep the default.
func WithKeepalive(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.keepalive = d
		}
	}
}

// NewServer creates a Server feeding reg.
func NewServer(reg *broadcast.Registry, opts ...Option) *Server {
	s := &Server{
		reg:       reg,
		log:       logger.Noop(),
		keepalive: DefaultKeepalive,
		conns:     make(map[*Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			Subprotocols:    wire.Subprotocols,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP upgrades the request and blocks until the connection ends.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	c := newConn(ws, clientIP(r.RemoteAddr), s.keepalive)
	if !s.track(c) {
		c.close()
		return
	}
	defer s.untrack(c)

	n := s.reg.Connect(c)
	s.log.Info("client connected - IP %s - Client(s) %d - %s", c.remote, n, c.codec.Subprotocol())

	go c.pingLoop()
	c.readLoop()
	c.close()

	n = s.reg.Disconnect(c)
	s.log.Info("client disconnected - IP %s - Client(s) %d", c.remote, n)
}

// ListenAndServe binds addr and serves until ctx is done. Failing to bind
// is returned as a TRANSPORT error.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return gwerrors.WrapWithCode(err, gwerrors.ErrTransport,
			fmt.Sprintf("Couldn't listen on %s", addr),
			"Pick a free port with --listen or stop whatever is using it")
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes every
// open connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return gwerrors.WrapWithCode(err, gwerrors.ErrTransport, "Server stopped unexpectedly", "")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(shutdownCtx)

	// Hijacked connections are not closed by Shutdown.
	s.closeAll()
	s.wg.Wait()
	return nil
}

// Len returns the number of open connections.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	s.closing = true
	conns := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

var _ broadcast.Observer = (*Conn)(nil)
