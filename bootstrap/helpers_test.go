package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }

func (timeoutError) Timeout() bool { return true }

func (timeoutError) Temporary() bool { return true }

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		dep      string
		err      error
		addr     string
		contains string
	}{
		{
			name:     "nil error returns empty string",
			dep:      "redis",
			err:      nil,
			addr:     "localhost:6379",
			contains: "",
		},
		{
			name:     "timeout",
			dep:      "postgres",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}},
			addr:     "db:5432",
			contains: "timed out",
		},
		{
			name: "connection refused",
			dep:  "redis",
			err: &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{
				Syscall: "connect", Err: syscall.ECONNREFUSED,
			}},
			addr:     "localhost:6379",
			contains: "REDIS_HOST and REDIS_PORT",
		},
		{
			name:     "refused from driver text",
			dep:      "postgres",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			addr:     "127.0.0.1:5432",
			contains: "DB_HOST and DB_PORT",
		},
		{
			name:     "dns failure",
			dep:      "postgres",
			err:      errors.New("dial tcp: lookup nope.invalid: no such host"),
			addr:     "nope.invalid:5432",
			contains: "Cannot resolve hostname",
		},
		{
			name:     "postgres auth",
			dep:      "postgres",
			err:      errors.New(`pq: password authentication failed for user "postgres"`),
			addr:     "localhost:5432",
			contains: "DB_PASSWORD",
		},
		{
			name:     "redis auth",
			dep:      "redis",
			err:      errors.New("NOAUTH Authentication required."),
			addr:     "localhost:6379",
			contains: "REDIS_PASSWORD",
		},
		{
			name:     "unknown error",
			dep:      "redis",
			err:      fmt.Errorf("something odd"),
			addr:     "localhost:6379",
			contains: "Failed to connect to redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyConnectionError(tt.dep, tt.err, tt.addr)
			if tt.contains == "" {
				if got != "" {
					t.Errorf("ClassifyConnectionError() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ClassifyConnectionError() = %q, want it to contain %q", got, tt.contains)
			}
			if !strings.Contains(got, tt.addr) {
				t.Errorf("ClassifyConnectionError() = %q, want it to mention %q", got, tt.addr)
			}
		})
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := envPrefix("postgres"); got != "DB" {
		t.Errorf("envPrefix(postgres) = %q, want DB", got)
	}
	if got := envPrefix("redis"); got != "REDIS" {
		t.Errorf("envPrefix(redis) = %q, want REDIS", got)
	}
}
