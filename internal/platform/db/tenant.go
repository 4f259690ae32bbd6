package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const (
	// TenantIDKey carries the resolved tenant identifier.
	TenantIDKey contextKey = "tenant_id"
	// TenantDBKey carries the tenant store handle.
	TenantDBKey contextKey = "tenant_db"
)

// GlobalSchema holds the cross-tenant tables: the hospital registry and all
// user accounts.
const GlobalSchema = "shared"

// schemaMaxLen caps derived schema names well under the Postgres identifier
// limit; 35 covers "t_" plus a dashless UUID.
const schemaMaxLen = 35

var schemaPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// DeriveSchemaName maps a tenant identifier onto its storage namespace:
// lowercase, non-alphanumerics stripped, prefixed with "t_" and length
// capped. The mapping is deterministic, so the same tenant always resolves
// to the same schema.
func DeriveSchemaName(tenantID string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(tenantID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("tenant identifier %q has no usable characters", tenantID)
	}

	name := "t_" + b.String()
	if len(name) > schemaMaxLen {
		name = name[:schemaMaxLen]
	}
	if !schemaPattern.MatchString(name) {
		return "", fmt.Errorf("derived schema name %q is not a valid identifier", name)
	}
	return name, nil
}

// TenantDB is a live handle on one tenant's isolated store: a connection
// pool whose search_path is pinned to the tenant schema.
type TenantDB struct {
	pool     *pgxpool.Pool
	schema   string
	tenantID string
	closed   atomic.Bool
}

func (t *TenantDB) Schema() string   { return t.schema }
func (t *TenantDB) TenantID() string { return t.tenantID }

func (t *TenantDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return t.pool.Query(ctx, sql, args...)
}

func (t *TenantDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return t.pool.QueryRow(ctx, sql, args...)
}

func (t *TenantDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return t.pool.Exec(ctx, sql, args...)
}

func (t *TenantDB) Ping(ctx context.Context) error {
	return t.pool.Ping(ctx)
}

// Close marks the handle unusable and releases its pool. The registry opens
// a fresh handle on the next request for this tenant.
func (t *TenantDB) Close() {
	if t.closed.CompareAndSwap(false, true) {
		t.pool.Close()
	}
}

// Closed reports whether the handle has been shut down.
func (t *TenantDB) Closed() bool { return t.closed.Load() }

// WithTenant attaches a tenant handle and identifier to the context.
func WithTenant(ctx context.Context, tdb *TenantDB, tenantID string) context.Context {
	ctx = context.WithValue(ctx, TenantIDKey, tenantID)
	if tdb != nil {
		ctx = context.WithValue(ctx, TenantDBKey, tdb)
	}
	return ctx
}

// TenantFromContext retrieves the tenant store handle from context.
func TenantFromContext(ctx context.Context) *TenantDB {
	tdb, _ := ctx.Value(TenantDBKey).(*TenantDB)
	return tdb
}

// TenantIDFromContext retrieves the tenant ID from context.
func TenantIDFromContext(ctx context.Context) string {
	tid, _ := ctx.Value(TenantIDKey).(string)
	return tid
}

// CreateTenantSchema provisions the storage namespace for a new tenant and
// runs the tenant migrations against it. If migrationsDir is empty,
// migrations are skipped.
func CreateTenantSchema(ctx context.Context, pool *pgxpool.Pool, tenantID string, migrationsDir string) error {
	schema, err := DeriveSchemaName(tenantID)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if migrationsDir != "" {
		migrator := NewMigrator(pool, migrationsDir)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}

// DropTenantSchema removes a tenant namespace. Used only as registration
// rollback, before the tenant has any data.
func DropTenantSchema(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	schema, err := DeriveSchemaName(tenantID)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
		return fmt.Errorf("drop schema %s: %w", schema, err)
	}
	return nil
}
