package server

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kerr"
	"go.uber.org/zap"

	"laconia/dispatch"
	"laconia/handlers"
	"laconia/messages"
	"laconia/primitives"
	"laconia/protocol"
)

func newTestConn(t *testing.T) (client net.Conn, cancel context.CancelFunc, done chan error) {
	t.Helper()
	clientSide, serverSide := net.Pipe()

	reg := dispatch.NewRegistry()
	handlers.RegisterAll(reg)

	state := &ConnState{Registry: reg}
	dispatchFn := Chain(LoggingInterceptor(zap.NewNop()))(func(_ context.Context, header protocol.RequestHeader, body []byte) ([]byte, error) {
		return reg.DecodeAndInvoke(header.APIKey, body, header.APIVersion)
	})
	conn := NewConn(serverSide, state, dispatchFn, zap.NewNop(), 0)

	ctx, cancelFn := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() { done <- conn.Serve(ctx) }()

	t.Cleanup(func() {
		cancelFn()
		clientSide.Close()
	})

	return clientSide, cancelFn, done
}

func buildHeader(apiKey, apiVersion int16, correlationID int32, clientID string, flexible bool) []byte {
	var buf []byte
	buf = primitives.EncodeInt16(buf, apiKey)
	buf = primitives.EncodeInt16(buf, apiVersion)
	buf = primitives.EncodeInt32(buf, correlationID)
	buf = primitives.EncodeNullableString(buf, clientID, false)
	if flexible {
		buf = primitives.EncodeTaggedFields(buf, primitives.TaggedFields{})
	}
	return buf
}

func writeFrame(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	frame := protocol.EncodeFrame(payload)
	if _, err := conn.Write(frame); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		t.Fatalf("read length prefix failed: %v", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(conn, body); err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return body
}

func TestScenarioApiVersionsV3(t *testing.T) {
	client, _, _ := newTestConn(t)

	header := buildHeader(messages.ApiVersionsAPIKey, 3, 7, "c", true)
	body := messages.EncodeApiVersionsRequest(nil, messages.ApiVersionsRequest{
		ClientSoftwareName:    "rdkafka",
		ClientSoftwareVersion: "2.3.0",
	}, 3)
	writeFrame(t, client, append(header, body...))

	resp := readFrame(t, client)
	correlationID, rest, err := primitives.DecodeInt32(resp)
	if err != nil {
		t.Fatalf("decode correlation id failed: %v", err)
	}
	if correlationID != 7 {
		t.Fatalf("correlation id = %d, want 7", correlationID)
	}
	_, rest, err = primitives.DecodeTaggedFields(rest)
	if err != nil {
		t.Fatalf("decode response header tagged fields failed: %v", err)
	}
	apiResp, rest, err := messages.DecodeApiVersionsResponse(rest, 3)
	if err != nil {
		t.Fatalf("decode api versions response failed: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes", len(rest))
	}
	if apiResp.ErrorCode != 0 {
		t.Fatalf("error_code = %d, want 0", apiResp.ErrorCode)
	}
	found := false
	for _, k := range apiResp.APIKeys {
		if k.APIKey == messages.ApiVersionsAPIKey {
			found = true
		}
	}
	if !found {
		t.Fatalf("api_keys does not contain api_key 18: %+v", apiResp.APIKeys)
	}
	if apiResp.ThrottleTimeMs != 0 {
		t.Fatalf("throttle_time_ms = %d, want 0", apiResp.ThrottleTimeMs)
	}
}

func TestScenarioApiVersionsV1Legacy(t *testing.T) {
	client, _, _ := newTestConn(t)

	// api_version 1 is a normal, supported request (ApiVersionsMinVersion is
	// 0), not the out-of-range fallback: header version 1 is non-flexible,
	// and the body must use the matching legacy (non-compact, no trailing
	// tagged fields) shape.
	header := buildHeader(messages.ApiVersionsAPIKey, 1, 11, "c", false)
	body := messages.EncodeApiVersionsRequest(nil, messages.ApiVersionsRequest{}, 1)
	writeFrame(t, client, append(header, body...))

	resp := readFrame(t, client)
	correlationID, rest, err := primitives.DecodeInt32(resp)
	if err != nil {
		t.Fatalf("decode correlation id failed: %v", err)
	}
	if correlationID != 11 {
		t.Fatalf("correlation id = %d, want 11", correlationID)
	}
	// header version 1 is not flexible: no response-header tagged fields.

	apiResp, rest, err := messages.DecodeApiVersionsResponse(rest, 1)
	if err != nil {
		t.Fatalf("decode api versions response failed: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes (legacy body decode left bytes unconsumed, suggesting the encoder emitted the flexible v3+ shape instead)", len(rest))
	}
	if apiResp.ErrorCode != 0 {
		t.Fatalf("error_code = %d, want 0", apiResp.ErrorCode)
	}
	found := false
	for _, k := range apiResp.APIKeys {
		if k.APIKey == messages.ApiVersionsAPIKey {
			found = true
		}
	}
	if !found {
		t.Fatalf("api_keys does not contain api_key 18: %+v", apiResp.APIKeys)
	}
}

func TestScenarioApiVersionsUnsupportedVersion(t *testing.T) {
	client, _, _ := newTestConn(t)

	var buf []byte
	buf = primitives.EncodeInt16(buf, messages.ApiVersionsAPIKey)
	buf = primitives.EncodeInt16(buf, 99)
	buf = primitives.EncodeInt32(buf, 55)
	writeFrame(t, client, buf)

	resp := readFrame(t, client)
	correlationID, rest, err := primitives.DecodeInt32(resp)
	if err != nil {
		t.Fatalf("decode correlation id failed: %v", err)
	}
	if correlationID != 55 {
		t.Fatalf("correlation id = %d, want 55", correlationID)
	}
	// header version 1 (v0 response) is not flexible: no tagged fields here.
	apiResp, rest, err := messages.DecodeApiVersionsResponse(rest, 0)
	if err != nil {
		t.Fatalf("decode api versions response failed: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes", len(rest))
	}
	if apiResp.ErrorCode != kerr.UnsupportedVersion.Code {
		t.Fatalf("error_code = %d, want %d", apiResp.ErrorCode, kerr.UnsupportedVersion.Code)
	}
	if len(apiResp.APIKeys) == 0 {
		t.Fatalf("expected api_keys still populated from the registry")
	}
}

func TestScenarioMetadataAllTopics(t *testing.T) {
	client, _, _ := newTestConn(t)

	header := buildHeader(messages.MetadataAPIKey, 12, 3, "c", true)
	body := messages.EncodeMetadataRequest(nil, messages.MetadataRequest{}, 12)
	writeFrame(t, client, append(header, body...))

	resp := readFrame(t, client)
	correlationID, rest, err := primitives.DecodeInt32(resp)
	if err != nil {
		t.Fatalf("decode correlation id failed: %v", err)
	}
	if correlationID != 3 {
		t.Fatalf("correlation id = %d, want 3", correlationID)
	}
	_, rest, err = primitives.DecodeTaggedFields(rest)
	if err != nil {
		t.Fatalf("decode response header tagged fields failed: %v", err)
	}
	metaResp, rest, err := messages.DecodeMetadataResponse(rest, 12)
	if err != nil {
		t.Fatalf("decode metadata response failed: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes", len(rest))
	}
	if len(metaResp.Brokers) != 0 || len(metaResp.Topics) != 0 {
		t.Fatalf("expected empty brokers/topics, got %+v", metaResp)
	}
	if metaResp.ThrottleTimeMs != 0 {
		t.Fatalf("throttle_time_ms = %d, want 0", metaResp.ThrottleTimeMs)
	}
}

func TestScenarioUnknownAPIKeyClosesConnection(t *testing.T) {
	client, _, done := newTestConn(t)

	var buf []byte
	buf = primitives.EncodeInt16(buf, 999)
	buf = primitives.EncodeInt16(buf, 0)
	buf = primitives.EncodeInt32(buf, 1)
	buf = primitives.EncodeNullableString(buf, "", true)
	writeFrame(t, client, buf)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("connection did not close after unknown api_key")
	}

	oneByte := make([]byte, 1)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := client.Read(oneByte); err != io.EOF {
		t.Fatalf("expected EOF (no response written), got %v", err)
	}
}

func TestScenarioMalformedUTF8ClientIDClosesConnection(t *testing.T) {
	client, _, done := newTestConn(t)

	var buf []byte
	buf = primitives.EncodeInt16(buf, messages.MetadataAPIKey)
	buf = primitives.EncodeInt16(buf, 0)
	buf = primitives.EncodeInt32(buf, 1)
	buf = primitives.EncodeInt16(buf, 3)
	buf = append(buf, 0xFF, 0xFE, 0xFD)
	writeFrame(t, client, buf)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("connection did not close after malformed client_id")
	}

	oneByte := make([]byte, 1)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := client.Read(oneByte); err != io.EOF {
		t.Fatalf("expected EOF (no response written), got %v", err)
	}
}

func TestScenarioPartialFrameDelivery(t *testing.T) {
	client, _, _ := newTestConn(t)

	header := buildHeader(messages.ApiVersionsAPIKey, 3, 9, "c", true)
	body := messages.EncodeApiVersionsRequest(nil, messages.ApiVersionsRequest{
		ClientSoftwareName:    "x",
		ClientSoftwareVersion: "y",
	}, 3)
	frame := protocol.EncodeFrame(append(header, body...))

	go func() {
		client.Write(frame[:3])
		for _, b := range frame[3:] {
			client.Write([]byte{b})
		}
	}()

	resp := readFrame(t, client)
	correlationID, _, err := primitives.DecodeInt32(resp)
	if err != nil {
		t.Fatalf("decode correlation id failed: %v", err)
	}
	if correlationID != 9 {
		t.Fatalf("correlation id = %d, want 9", correlationID)
	}
}

func TestOrderingAcrossInterleavedRequests(t *testing.T) {
	client, _, _ := newTestConn(t)

	var wire []byte
	for _, correlationID := range []int32{1, 2, 3} {
		header := buildHeader(messages.ApiVersionsAPIKey, 0, correlationID, "", false)
		wire = append(wire, protocol.EncodeFrame(header)...)
	}

	if _, err := client.Write(wire); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	for _, want := range []int32{1, 2, 3} {
		resp := readFrame(t, client)
		got, _, err := primitives.DecodeInt32(resp)
		if err != nil {
			t.Fatalf("decode correlation id failed: %v", err)
		}
		if got != want {
			t.Fatalf("got correlation id %d, want %d", got, want)
		}
	}
}
