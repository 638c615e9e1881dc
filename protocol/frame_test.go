package protocol

import "testing"

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	wire := EncodeFrame(payload)

	d := NewDecoder(0)
	d.Write(wire)
	got, ok, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !ok {
		t.Fatalf("Next did not yield a frame")
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}

	_, ok, err = d.Next()
	if err != nil || ok {
		t.Fatalf("expected no further frame, got ok=%v err=%v", ok, err)
	}
}

func TestFrameBoundaryInvarianceByteAtATime(t *testing.T) {
	frames := [][]byte{
		[]byte("first"),
		[]byte(""),
		[]byte("third frame payload"),
	}
	var wire []byte
	for _, f := range frames {
		wire = append(wire, EncodeFrame(f)...)
	}

	d := NewDecoder(0)
	var got [][]byte
	for _, b := range wire {
		d.Write([]byte{b})
		for {
			frame, ok, err := d.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if !ok {
				break
			}
			got = append(got, frame)
		}
	}

	if len(got) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(got), len(frames))
	}
	for i := range frames {
		if string(got[i]) != string(frames[i]) {
			t.Errorf("frame %d: got %q, want %q", i, got[i], frames[i])
		}
	}
}

func TestFrameTooLarge(t *testing.T) {
	d := NewDecoder(4)
	wire := EncodeFrame([]byte("too big"))
	d.Write(wire)
	_, _, err := d.Next()
	if err == nil {
		t.Fatalf("expected frame-too-large error")
	}
	var tooLarge *FrameTooLargeError
	if _, ok := err.(*FrameTooLargeError); !ok {
		t.Fatalf("got %T (%v), want %T", err, err, tooLarge)
	}
}

func TestFramePartialDelivery(t *testing.T) {
	payload := make([]byte, 128)
	for i := range payload {
		payload[i] = byte(i)
	}
	wire := EncodeFrame(payload)

	d := NewDecoder(0)
	d.Write(wire[:3])
	if _, ok, err := d.Next(); ok || err != nil {
		t.Fatalf("expected no frame after 3 bytes, got ok=%v err=%v", ok, err)
	}
	for _, b := range wire[3 : len(wire)-1] {
		d.Write([]byte{b})
		if _, ok, err := d.Next(); ok || err != nil {
			t.Fatalf("expected no frame before full delivery, got ok=%v err=%v", ok, err)
		}
	}
	d.Write(wire[len(wire)-1:])
	got, ok, err := d.Next()
	if err != nil || !ok {
		t.Fatalf("expected final frame, ok=%v err=%v", ok, err)
	}
	if len(got) != 128 {
		t.Fatalf("got frame of length %d, want 128", len(got))
	}
}
