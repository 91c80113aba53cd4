package testutil

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/patrick-jessen/enginectl/internal/logging"
)

// lockedBuilder lets the log be read while other goroutines still write to it.
type lockedBuilder struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuilder) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p) //nolint:wrapcheck // in-memory writer
}

func (b *lockedBuilder) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewTestContext creates a context with logger for race-safe testing
// Returns a context with logger attached and a function to retrieve log output
func NewTestContext(t *testing.T) (ctx context.Context, getLogOutput func() string) {
	t.Helper()

	logOutput := &lockedBuilder{}

	ctx, err := logging.New(context.Background(), nil, logging.Config{
		Engine: "test-engine",
		Writer: logOutput,
		Level:  "debug",
	})
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}

	return ctx, logOutput.String
}
