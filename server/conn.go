package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/twmb/franz-go/pkg/kerr"
	"go.uber.org/zap"

	"laconia/dispatch"
	"laconia/messages"
	"laconia/primitives"
	"laconia/protocol"
)

// ConnState is the per-connection state passed to the loop: the shared,
// read-only handler registry, plus any session-scoped fields a handler
// might write to (none yet — reserved for a future handler that needs to
// negotiate protocol flexibility after ApiVersions). It is created at
// accept time and destroyed at close; it must never be shared across
// connections.
type ConnState struct {
	Registry *dispatch.Registry
}

// Conn owns one accepted connection's read loop. Unlike the teacher's
// handleConn, which spawns a goroutine per request, Conn processes
// decode -> dispatch -> encode -> write synchronously within the loop, so
// responses are emitted in exactly the order their requests arrived.
type Conn struct {
	netConn  net.Conn
	state    *ConnState
	dispatch DispatchFunc
	logger   *zap.Logger

	maxFrameBytes int32
}

// NewConn wraps an accepted net.Conn. dispatch is the fully-built
// interceptor chain terminating in the registry's DecodeAndInvoke.
func NewConn(netConn net.Conn, state *ConnState, dispatch DispatchFunc, logger *zap.Logger, maxFrameBytes int32) *Conn {
	return &Conn{
		netConn:       netConn,
		state:         state,
		dispatch:      dispatch,
		logger:        logger,
		maxFrameBytes: maxFrameBytes,
	}
}

// Serve runs the read loop until EOF, a fatal decode error, or ctx is
// cancelled. It always closes the underlying connection before returning.
func (c *Conn) Serve(ctx context.Context) error {
	defer c.netConn.Close()

	dec := protocol.NewDecoder(c.maxFrameBytes)
	readBuf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := c.netConn.Read(readBuf)
		if n > 0 {
			dec.Write(readBuf[:n])
			for {
				frame, ok, frameErr := dec.Next()
				if frameErr != nil {
					c.logger.Warn("frame decode failed, closing connection", zap.Error(frameErr))
					return frameErr
				}
				if !ok {
					break
				}
				if err := c.handleFrame(ctx, frame); err != nil {
					c.logger.Warn("request handling failed, closing connection", zap.Error(err))
					return err
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

// handleFrame decodes one frame's header, dispatches it, and writes the
// response. A header decode failure closes the connection unless the
// request was ApiVersions rejected solely for an out-of-range version, in
// which case the protocol requires a v0 error response instead (see
// spec's unsupported-version propagation rule).
func (c *Conn) handleFrame(ctx context.Context, frame []byte) error {
	header, body, err := protocol.DecodeRequestHeader(frame, c.state.Registry)
	if err != nil {
		c.logger.Warn("request header decode failed",
			zap.Int16("api_key", header.APIKey),
			zap.Int16("api_version", header.APIVersion),
			zap.Error(err))
		var versionErr *protocol.UnsupportedVersionError
		if errors.As(err, &versionErr) && header.APIKey == messages.ApiVersionsAPIKey {
			return c.writeUnsupportedAPIVersionsResponse(header.CorrelationID)
		}
		return err
	}

	respBody, err := c.dispatch(ctx, header, body)
	if err != nil {
		return err
	}

	// Request header versions 1/2 correspond to response header versions
	// 0/1: the response header is flexible exactly when the request's is.
	payload := protocol.EncodeResponseHeader(nil, header.CorrelationID, header.HeaderVersion-1)
	payload = append(payload, respBody...)
	if err := c.write(payload); err != nil {
		return err
	}
	c.logger.Debug("response sent",
		zap.Int16("api_key", header.APIKey),
		zap.Int32("correlation_id", header.CorrelationID))
	return nil
}

// writeUnsupportedAPIVersionsResponse implements the one documented
// exception to "unsupported-version closes the connection": ApiVersions
// replies at version 0 with kerr.UnsupportedVersion's error code, so a
// client probing for supported versions always gets an answer.
func (c *Conn) writeUnsupportedAPIVersionsResponse(correlationID int32) error {
	keys := c.apiVersionsKeys()
	body := messages.EncodeApiVersionsResponse(nil, messages.ApiVersionsResponse{
		ErrorCode:      kerr.UnsupportedVersion.Code,
		APIKeys:        keys,
		ThrottleTimeMs: 0,
	}, 0)

	headerVersion := messages.ApiVersionsHeaderVersion(0) - 1
	payload := protocol.EncodeResponseHeader(nil, correlationID, headerVersion)
	payload = append(payload, body...)
	return c.write(payload)
}

func (c *Conn) apiVersionsKeys() []messages.ApiVersionsKey {
	apiKeys := c.state.Registry.ApiKeys()
	keys := make([]messages.ApiVersionsKey, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		min, max, ok := c.state.Registry.VersionRange(apiKey)
		if !ok {
			continue
		}
		keys = append(keys, messages.ApiVersionsKey{APIKey: apiKey, MinVersion: min, MaxVersion: max, TaggedFields: primitives.TaggedFields{}})
	}
	return keys
}

func (c *Conn) write(payload []byte) error {
	frame := protocol.EncodeFrame(payload)
	_, err := c.netConn.Write(frame)
	return err
}
