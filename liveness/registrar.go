// Package liveness implements the agent's check-in with the cluster's
// control plane. This is not part of the wire-protocol core (spec.md
// explicitly excludes the control-plane RPC client); it is the one
// ambient out-of-band collaborator the original source wires directly
// into its entrypoint, so this repo carries a stub of it, adapted from
// the teacher's etcd-backed service registry.
package liveness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const keyPrefix = "/laconia/agents/"

// Registrar checks an agent in and out of the cluster's liveness view.
type Registrar interface {
	Checkin(ctx context.Context, agentID uuid.UUID, advertiseAddr string) (leaseTTL time.Duration, err error)
	Deregister(ctx context.Context, agentID uuid.UUID) error
}

// EtcdRegistrar implements Registrar over an etcd v3 client, the same
// dependency the teacher's EtcdRegistry used for service discovery,
// repurposed here for liveness check-ins.
type EtcdRegistrar struct {
	client *clientv3.Client
	ttl    int64 // lease TTL in seconds
}

// NewEtcdRegistrar connects to the given etcd endpoints. ttl is the lease
// duration in seconds; KeepAlive renews it automatically once Checkin
// starts.
func NewEtcdRegistrar(endpoints []string, ttl int64) (*EtcdRegistrar, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistrar{client: c, ttl: ttl}, nil
}

// Checkin grants a lease, writes the agent's advertise address keyed by
// agentID, and starts a background KeepAlive goroutine that renews the
// lease until ctx is cancelled or the lease expires.
func (r *EtcdRegistrar) Checkin(ctx context.Context, agentID uuid.UUID, advertiseAddr string) (time.Duration, error) {
	lease, err := r.client.Grant(ctx, r.ttl)
	if err != nil {
		return 0, fmt.Errorf("liveness: grant lease: %w", err)
	}

	key := keyPrefix + agentID.String()
	if _, err := r.client.Put(ctx, key, advertiseAddr, clientv3.WithLease(lease.ID)); err != nil {
		return 0, fmt.Errorf("liveness: put checkin key: %w", err)
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return 0, fmt.Errorf("liveness: start keepalive: %w", err)
	}
	go func() {
		for range ch {
		}
	}()

	return time.Duration(r.ttl) * time.Second, nil
}

// Deregister removes the agent's check-in key.
func (r *EtcdRegistrar) Deregister(ctx context.Context, agentID uuid.UUID) error {
	_, err := r.client.Delete(ctx, keyPrefix+agentID.String())
	if err != nil {
		return fmt.Errorf("liveness: delete checkin key: %w", err)
	}
	return nil
}

// Close releases the underlying etcd client connection.
func (r *EtcdRegistrar) Close() error {
	return r.client.Close()
}
