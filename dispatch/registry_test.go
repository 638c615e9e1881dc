package dispatch

import "testing"

type fakeRequest struct{ n int32 }
type fakeResponse struct{ n int32 }

func fakeHeaderVersion(flexAt int16) func(int16) int16 {
	return func(v int16) int16 {
		if v >= flexAt {
			return 2
		}
		return 1
	}
}

func TestRegisterAndDecodeAndInvoke(t *testing.T) {
	r := NewRegistry()
	Register[fakeRequest, fakeResponse](r, 18, 0, 4, fakeHeaderVersion(3),
		func(buf []byte, version int16) (fakeRequest, []byte, error) {
			return fakeRequest{n: int32(buf[0])}, buf[1:], nil
		},
		func(out []byte, resp fakeResponse, version int16) []byte {
			return append(out, byte(resp.n))
		},
		func(req fakeRequest, version int16) (fakeResponse, error) {
			return fakeResponse{n: req.n * 2}, nil
		},
	)

	out, err := r.DecodeAndInvoke(18, []byte{21}, 3)
	if err != nil {
		t.Fatalf("DecodeAndInvoke failed: %v", err)
	}
	if len(out) != 1 || out[0] != 42 {
		t.Fatalf("got %v, want [42]", out)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	register := func() {
		Register[fakeRequest, fakeResponse](r, 18, 0, 4, fakeHeaderVersion(3),
			func(buf []byte, version int16) (fakeRequest, []byte, error) { return fakeRequest{}, nil, nil },
			func(out []byte, resp fakeResponse, version int16) []byte { return out },
			func(req fakeRequest, version int16) (fakeResponse, error) { return fakeResponse{}, nil },
		)
	}
	register()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	register()
}

func TestDispatchConsistency(t *testing.T) {
	r := NewRegistry()
	Register[fakeRequest, fakeResponse](r, 18, 0, 4, fakeHeaderVersion(3),
		func(buf []byte, version int16) (fakeRequest, []byte, error) { return fakeRequest{}, nil, nil },
		func(out []byte, resp fakeResponse, version int16) []byte { return out },
		func(req fakeRequest, version int16) (fakeResponse, error) { return fakeResponse{}, nil },
	)
	Register[fakeRequest, fakeResponse](r, 3, 0, 13, fakeHeaderVersion(9),
		func(buf []byte, version int16) (fakeRequest, []byte, error) { return fakeRequest{}, nil, nil },
		func(out []byte, resp fakeResponse, version int16) []byte { return out },
		func(req fakeRequest, version int16) (fakeResponse, error) { return fakeResponse{}, nil },
	)

	keys := r.ApiKeys()
	if len(keys) != 2 || keys[0] != 3 || keys[1] != 18 {
		t.Fatalf("got %v, want [3 18]", keys)
	}
	for _, apiKey := range keys {
		info, ok := r.Lookup(apiKey)
		if !ok {
			t.Fatalf("Lookup(%d) missing", apiKey)
		}
		min, max, ok := r.VersionRange(apiKey)
		if !ok || info.MinVersion() != min || info.MaxVersion() != max {
			t.Errorf("api_key %d: VersionRange=(%d,%d) SchemaInfo=(%d,%d)", apiKey, min, max, info.MinVersion(), info.MaxVersion())
		}
	}
}

func TestHeaderVersionMonotonicity(t *testing.T) {
	r := NewRegistry()
	Register[fakeRequest, fakeResponse](r, 18, 0, 4, fakeHeaderVersion(3),
		func(buf []byte, version int16) (fakeRequest, []byte, error) { return fakeRequest{}, nil, nil },
		func(out []byte, resp fakeResponse, version int16) []byte { return out },
		func(req fakeRequest, version int16) (fakeResponse, error) { return fakeResponse{}, nil },
	)
	info, ok := r.Lookup(18)
	if !ok {
		t.Fatalf("Lookup(18) missing")
	}
	prev := info.HeaderVersion(0)
	for v := int16(1); v <= 4; v++ {
		cur := info.HeaderVersion(v)
		if cur < prev {
			t.Fatalf("header_version not monotonic: v=%d got %d after %d at v-1", v, cur, prev)
		}
		prev = cur
	}
}

func TestLookupUnregisteredAPIKey(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup(999); ok {
		t.Fatalf("expected Lookup(999) to fail")
	}
	if _, err := r.DecodeAndInvoke(999, nil, 0); err == nil {
		t.Fatalf("expected DecodeAndInvoke(999) to fail")
	}
}
