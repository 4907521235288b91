package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// WithFileLock runs fn while holding an advisory lock named after target.
// Lock files live in lockDir so nothing extra lands in the project tree.
func WithFileLock(ctx context.Context, lockDir, target string, fn func() error) error {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}
	lock := flock.New(filepath.Join(lockDir, SHA256Hex([]byte(abs))[:16]+".lock"))
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", target, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", target)
	}
	defer lock.Unlock()
	return fn()
}
