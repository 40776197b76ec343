package database

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClient builds a Client whose reconnect and ping are stubbed so retry
// behavior can be exercised without a live database.
func testClient(t *testing.T) (*Client, *int) {
	t.Helper()
	reconnects := 0
	c := &Client{logger: zap.NewNop(), lastPing: time.Now()}
	c.reconnectFn = func(ctx context.Context) error {
		reconnects++
		return nil
	}
	c.pingFn = func(ctx context.Context) error { return nil }
	return c, &reconnects
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"net error", &net.OpError{Op: "read", Err: errors.New("reset")}, true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"undefined column", &pgconn.PgError{Code: "42703"}, false},
		{"closed pool", errors.New("closed pool"), true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestWithRetryTransientOnce(t *testing.T) {
	c, reconnects := testClient(t)

	attempts := 0
	err := c.WithRetry(context.Background(), "save", func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return io.EOF
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, *reconnects)
}

func TestWithRetryTransientTwiceSurfacesError(t *testing.T) {
	c, _ := testClient(t)

	attempts := 0
	err := c.WithRetry(context.Background(), "save", func(ctx context.Context) error {
		attempts++
		return io.EOF
	})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetryNonTransientShortCircuits(t *testing.T) {
	c, reconnects := testClient(t)

	uniqueViolation := &pgconn.PgError{Code: "23505"}
	attempts := 0
	err := c.WithRetry(context.Background(), "save", func(ctx context.Context) error {
		attempts++
		return uniqueViolation
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, *reconnects)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)
}

func TestWithRetrySuccessIsSingleAttempt(t *testing.T) {
	c, reconnects := testClient(t)

	attempts := 0
	err := c.WithRetry(context.Background(), "get", func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, *reconnects)
}
