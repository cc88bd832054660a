package goroutine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	done := make(chan struct{})

	SafeGo(logger.NewNopLogger(), "panicking", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestSafeGoWithTimeout_ContextHasDeadline(t *testing.T) {
	result := make(chan bool, 1)

	SafeGoWithTimeout(logger.NewNopLogger(), "deadline", time.Minute, func(ctx context.Context) {
		_, ok := ctx.Deadline()
		result <- ok
	})

	select {
	case ok := <-result:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
