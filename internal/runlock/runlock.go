package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
	"github.com/openmined/cdnsync/internal/utils"
)

var ErrLocked = errors.New("another cdnsync run holds the lock for this bucket")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Lock is an advisory, per-bucket file lock that keeps concurrent runs from
// mutating the same bucket
type Lock struct {
	flock *flock.Flock
}

// New returns the lock for bucket inside dir. An empty dir uses the system temp dir.
func New(dir, bucket string) *Lock {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "cdnsync")
	}
	name := unsafeChars.ReplaceAllString(bucket, "_")
	if name == "" {
		name = "default"
	}
	return &Lock{flock: flock.New(filepath.Join(dir, name+".lock"))}
}

func (l *Lock) Path() string {
	return l.flock.Path()
}

// TryLock acquires the lock without blocking
func (l *Lock) TryLock() error {
	if err := utils.EnsureParent(l.flock.Path()); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	return nil
}

func (l *Lock) Unlock() error {
	// if this process doesn't hold the lock, leave the file alone
	if !l.flock.Locked() {
		return nil
	}

	// the file stays: unlinking it would let a waiter lock an orphaned inode
	// while a third run creates and locks a fresh file
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
