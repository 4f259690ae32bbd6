package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/primehealth/hms/internal/platform/apperr"
)

// ConnectFunc opens a connection pool bound to the given schema.
type ConnectFunc func(ctx context.Context, schema string) (*pgxpool.Pool, error)

// Registry maps a tenant identifier to a live handle on that tenant's
// isolated store. Handles are created lazily on first use and cached; a
// single-flight group collapses concurrent first requests for the same
// tenant into one connection attempt, so at most one live handle exists per
// tenant. Failed attempts are never cached.
type Registry struct {
	connect ConnectFunc

	mu      sync.RWMutex
	handles map[string]*TenantDB
	group   singleflight.Group
}

// NewRegistry builds a registry that connects to databaseURL with the
// search_path pinned to each tenant's schema.
func NewRegistry(databaseURL string, maxConns, minConns int32) *Registry {
	return &Registry{
		connect: func(ctx context.Context, schema string) (*pgxpool.Pool, error) {
			cfg, err := pgxpool.ParseConfig(databaseURL)
			if err != nil {
				return nil, fmt.Errorf("parse database url: %w", err)
			}
			cfg.MaxConns = maxConns
			cfg.MinConns = minConns
			cfg.ConnConfig.RuntimeParams["search_path"] = schema

			pool, err := pgxpool.NewWithConfig(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("create tenant pool: %w", err)
			}
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				return nil, fmt.Errorf("ping tenant store: %w", err)
			}
			return pool, nil
		},
		handles: make(map[string]*TenantDB),
	}
}

// NewRegistryWithConnect builds a registry around a custom connector.
func NewRegistryWithConnect(connect ConnectFunc) *Registry {
	return &Registry{connect: connect, handles: make(map[string]*TenantDB)}
}

// Get returns the ready handle for tenantID, opening one if none is cached
// or the cached handle has been closed. Repeated calls return the same
// handle while it stays healthy.
func (r *Registry) Get(ctx context.Context, tenantID string) (*TenantDB, error) {
	if tenantID == "" {
		return nil, apperr.New(apperr.Validation, "tenant identifier is required")
	}

	r.mu.RLock()
	h := r.handles[tenantID]
	r.mu.RUnlock()
	if h != nil && !h.Closed() {
		return h, nil
	}

	v, err, _ := r.group.Do(tenantID, func() (interface{}, error) {
		// Re-check under the flight: another caller may have just finished.
		r.mu.RLock()
		h := r.handles[tenantID]
		r.mu.RUnlock()
		if h != nil && !h.Closed() {
			return h, nil
		}

		schema, err := DeriveSchemaName(tenantID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid tenant identifier", err)
		}

		pool, err := r.connect(ctx, schema)
		if err != nil {
			return nil, apperr.Wrap(apperr.Connection, "failed to connect to tenant store", err)
		}

		nh := &TenantDB{pool: pool, schema: schema, tenantID: tenantID}
		r.mu.Lock()
		r.handles[tenantID] = nh
		r.mu.Unlock()
		return nh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TenantDB), nil
}

// Evict closes and drops the cached handle for tenantID, if any.
func (r *Registry) Evict(tenantID string) {
	r.mu.Lock()
	h := r.handles[tenantID]
	delete(r.handles, tenantID)
	r.mu.Unlock()
	if h != nil {
		h.Close()
	}
}

// Close shuts down every cached handle.
func (r *Registry) Close() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*TenantDB)
	r.mu.Unlock()
	for _, h := range handles {
		h.Close()
	}
}
