package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck flags a goroutine leak once the count passes threshold.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// Ping adapts a context-taking ping function (database pools, Redis clients)
// into a readiness CheckFunc.
func Ping(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) error {
		return ping(ctx)
	}
}
