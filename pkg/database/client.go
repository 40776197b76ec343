package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	// PingStaleness is how old the last successful probe may be before
	// EnsureConnection re-pings.
	PingStaleness = 300 * time.Second
	// KeepAliveInterval is the period of the background liveness loop.
	KeepAliveInterval = 120 * time.Second
)

// Client owns the pgx pool and its reconnect lifecycle. All repositories go
// through WithRetry so a transient connectivity failure costs one reconnect
// and one retry, never a raw error surfacing to the interactive layer.
type Client struct {
	mu       sync.Mutex
	pool     *pgxpool.Pool
	dsn      string
	lastPing time.Time
	logger   *zap.Logger

	// overridable in tests
	reconnectFn func(ctx context.Context) error
	pingFn      func(ctx context.Context) error
}

// Connect establishes the pool and verifies connectivity. A failure here is
// fatal to the caller: the process cannot run without storage.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{dsn: dsn, logger: logger}
	c.reconnectFn = c.reconnect
	c.pingFn = c.ping
	if err := c.reconnect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("PostgreSQL connection pool established")
	return c, nil
}

// Pool returns the current pool for query execution.
func (c *Client) Pool() *pgxpool.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool
}

// Close tears down the pool.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(c.dsn)
	if err != nil {
		return fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	c.mu.Lock()
	if c.pool != nil {
		c.pool.Close()
	}
	c.pool = pool
	c.lastPing = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Client) ping(ctx context.Context) error {
	pool := c.Pool()
	if pool == nil {
		return errors.New("pool not initialized")
	}
	return pool.Ping(ctx)
}

// Ping probes the current pool.
func (c *Client) Ping(ctx context.Context) error {
	return c.pingFn(ctx)
}

// EnsureConnection probes the pool when the last successful check is older
// than PingStaleness and rebuilds it on failure. It never returns an error:
// a failed probe falls back to a full reconnect attempt, and a failed
// reconnect is left for the operation's own retry cycle to surface.
func (c *Client) EnsureConnection(ctx context.Context) {
	c.mu.Lock()
	fresh := time.Since(c.lastPing) < PingStaleness && c.pool != nil
	c.mu.Unlock()
	if fresh {
		return
	}
	if err := c.pingFn(ctx); err != nil {
		c.logger.Warn("database probe failed, reconnecting", zap.Error(err))
		if err := c.reconnectFn(ctx); err != nil {
			c.logger.Error("database reconnect failed", zap.Error(err))
		}
		return
	}
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}

// KeepAlive probes the connection every KeepAliveInterval until ctx is done.
func (c *Client) KeepAlive(ctx context.Context) {
	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.pingFn(ctx); err != nil {
				c.logger.Warn("keepalive probe failed, reconnecting", zap.Error(err))
				if err := c.reconnectFn(ctx); err != nil {
					c.logger.Error("keepalive reconnect failed", zap.Error(err))
				}
				continue
			}
			c.mu.Lock()
			c.lastPing = time.Now()
			c.mu.Unlock()
		}
	}
}

// WithRetry runs fn with a bounded retry of exactly 2 attempts: on a
// transient connectivity error it reconnects and retries once. Non-transient
// errors (constraint violations, bad statements) short-circuit immediately.
func (c *Client) WithRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	c.EnsureConnection(ctx)
	err := fn(ctx)
	if err == nil || !IsTransient(err) {
		return err
	}
	c.logger.Warn("transient database error, retrying once",
		zap.String("op", op), zap.Error(err))
	if rerr := c.reconnectFn(ctx); rerr != nil {
		c.logger.Error("reconnect before retry failed", zap.String("op", op), zap.Error(rerr))
	}
	return fn(ctx)
}

// IsTransient reports whether err is a connectivity-class failure expected to
// clear on reconnect, as opposed to a data or schema error.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08 = connection exception; 57P0x = server shutdown/crash
		code := pgErr.Code
		return strings.HasPrefix(code, "08") ||
			code == "57P01" || code == "57P02" || code == "57P03"
	}
	msg := err.Error()
	return strings.Contains(msg, "closed pool") ||
		strings.Contains(msg, "conn closed") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}
