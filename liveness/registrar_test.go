package liveness

import "testing"

func TestNewEtcdRegistrarDoesNotDialEagerly(t *testing.T) {
	r, err := NewEtcdRegistrar([]string{"127.0.0.1:0"}, 10)
	if err != nil {
		t.Fatalf("NewEtcdRegistrar failed: %v", err)
	}
	defer r.Close()
	if r.ttl != 10 {
		t.Errorf("ttl = %d, want 10", r.ttl)
	}
}
