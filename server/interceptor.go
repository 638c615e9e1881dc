package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"laconia/protocol"
)

// DispatchFunc decodes a request body, invokes its handler, and returns the
// encoded response body.
type DispatchFunc func(ctx context.Context, header protocol.RequestHeader, body []byte) ([]byte, error)

// Interceptor wraps a DispatchFunc with a cross-cutting concern, the same
// onion model the teacher's middleware.Middleware follows: each layer may
// run code before calling next, after next returns, or skip next entirely.
type Interceptor func(next DispatchFunc) DispatchFunc

// Chain composes interceptors so the first one is outermost: on the way in
// it runs first, on the way out its post-processing runs last.
func Chain(interceptors ...Interceptor) Interceptor {
	return func(next DispatchFunc) DispatchFunc {
		for i := len(interceptors) - 1; i >= 0; i-- {
			next = interceptors[i](next)
		}
		return next
	}
}

// LoggingInterceptor records api_key, api_version, correlation_id, and
// elapsed duration for each dispatched request.
func LoggingInterceptor(logger *zap.Logger) Interceptor {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, header protocol.RequestHeader, body []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, header, body)
			fields := []zap.Field{
				zap.Int16("api_key", header.APIKey),
				zap.Int16("api_version", header.APIVersion),
				zap.Int32("correlation_id", header.CorrelationID),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("dispatch failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("dispatched request", fields...)
			}
			return resp, err
		}
	}
}

// TimeoutInterceptor bounds how long a single dispatch may run. The
// handler goroutine is not cancelled if the deadline fires; this only
// controls how long the connection loop waits before giving up, matching
// the teacher's TimeOutMiddleware note that true cancellation requires the
// handler to observe ctx itself.
func TimeoutInterceptor(timeout time.Duration) Interceptor {
	if timeout <= 0 {
		return func(next DispatchFunc) DispatchFunc { return next }
	}
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, header protocol.RequestHeader, body []byte) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				resp []byte
				err  error
			}
			done := make(chan result, 1)
			go func() {
				resp, err := next(ctx, header, body)
				done <- result{resp, err}
			}()

			select {
			case r := <-done:
				return r.resp, r.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}
