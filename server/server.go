// Package server implements the connection loop: one goroutine accepts
// connections (rate-limited via golang.org/x/time/rate, mirroring the
// teacher's RateLimitMiddleware moved from per-RPC to per-accept scope),
// and each accepted connection runs its own synchronous
// decode -> dispatch -> encode -> write loop.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"laconia/config"
	"laconia/dispatch"
	"laconia/protocol"
)

// Server accepts TCP connections and runs one Conn per accepted
// connection.
type Server struct {
	listener      net.Listener
	registry      *dispatch.Registry
	logger        *zap.Logger
	limiter       *rate.Limiter
	maxFrameBytes int32
	interceptor   Interceptor

	mu           sync.Mutex
	conns        map[*Conn]struct{}
	wg           sync.WaitGroup
	shuttingDown bool
}

// New constructs a Server over listener and registry. cfg supplies the
// frame-size cap and accept-rate limiter parameters; zero values fall back
// to package defaults.
func New(listener net.Listener, registry *dispatch.Registry, logger *zap.Logger, cfg config.Config) *Server {
	maxFrameBytes := cfg.MaxFrameBytes
	if maxFrameBytes <= 0 {
		maxFrameBytes = protocol.DefaultMaxFrameBytes
	}
	limit := cfg.AcceptRateLimit
	if limit <= 0 {
		limit = 500
	}
	burst := cfg.AcceptBurst
	if burst <= 0 {
		burst = 50
	}
	return &Server{
		listener:      listener,
		registry:      registry,
		logger:        logger,
		limiter:       rate.NewLimiter(rate.Limit(limit), burst),
		maxFrameBytes: maxFrameBytes,
		interceptor:   Chain(LoggingInterceptor(logger)),
		conns:         make(map[*Conn]struct{}),
	}
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed by Shutdown. Each accepted connection is served from its own
// goroutine; within a connection, requests are handled synchronously so
// responses preserve arrival order.
func (s *Server) Serve(ctx context.Context) error {
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		netConn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.logger.Info("connection accepted", zap.String("remote_addr", netConn.RemoteAddr().String()))

		state := &ConnState{Registry: s.registry}
		dispatchFn := s.interceptor(func(_ context.Context, header protocol.RequestHeader, body []byte) ([]byte, error) {
			return s.registry.DecodeAndInvoke(header.APIKey, body, header.APIVersion)
		})
		conn := NewConn(netConn, state, dispatchFn, s.logger, s.maxFrameBytes)

		s.trackConn(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrackConn(conn)
			err := conn.Serve(ctx)
			s.logger.Debug("connection closed", zap.Error(err), zap.String("remote_addr", netConn.RemoteAddr().String()))
		}()
	}
}

// Shutdown stops accepting new connections and waits (up to ctx's
// deadline) for in-flight connections to finish their current response,
// matching spec.md's cancellation rule: the loop awaits the in-flight
// handler, writes the response if still possible, then closes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()

	closeErr := s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) isShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

func (s *Server) trackConn(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
}

func (s *Server) untrackConn(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}
