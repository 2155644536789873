package bmc

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// CommandLock serializes all device commands across processes sharing the
// remote session resource, via an advisory file lock with a bounded wait.
type CommandLock struct {
	fileLock *flock.Flock
	timeout  time.Duration
}

func NewCommandLock(path string, timeout time.Duration) *CommandLock {
	return &CommandLock{
		fileLock: flock.New(path),
		timeout:  timeout,
	}
}

func (l *CommandLock) Acquire() error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	locked, err := l.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("%w (after %v): %v", ErrLockTimeout, l.timeout, err)
	}
	return nil
}

func (l *CommandLock) Release() {
	_ = l.fileLock.Unlock()
}
