// Package protocol implements the request/response header codec and the
// length-prefixed frame codec that sit between the raw TCP stream and the
// per-message schemas in package messages.
package protocol

import (
	"errors"
	"fmt"
)

// ErrUnsupportedAPIKey is returned when a header's api_key has no registered
// handler. The connection must be closed; the protocol offers no generic
// error envelope without a per-type response.
var ErrUnsupportedAPIKey = errors.New("protocol: unsupported api key")

// ErrUnsupportedVersion is returned when a header's api_version falls outside
// the schema's declared [min,max] range.
var ErrUnsupportedVersion = errors.New("protocol: unsupported api version")

// ErrFrameTooLarge is returned when a frame's declared length exceeds the
// configured cap.
var ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum size")

// UnsupportedAPIKeyError carries the offending api_key.
type UnsupportedAPIKeyError struct {
	APIKey int16
}

func (e *UnsupportedAPIKeyError) Error() string {
	return fmt.Sprintf("protocol: api_key %d is not registered", e.APIKey)
}

func (e *UnsupportedAPIKeyError) Unwrap() error { return ErrUnsupportedAPIKey }

// UnsupportedVersionError carries the offending api_key/api_version pair and
// the schema's supported range.
type UnsupportedVersionError struct {
	APIKey     int16
	APIVersion int16
	MinVersion int16
	MaxVersion int16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("protocol: api_key %d version %d outside supported range [%d,%d]",
		e.APIKey, e.APIVersion, e.MinVersion, e.MaxVersion)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// FrameTooLargeError carries the declared length and the configured cap.
type FrameTooLargeError struct {
	Declared int32
	Max      int32
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("protocol: frame length %d exceeds maximum %d", e.Declared, e.Max)
}

func (e *FrameTooLargeError) Unwrap() error { return ErrFrameTooLarge }
