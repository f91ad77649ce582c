package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryInterval = 250 * time.Millisecond
	lockMaxRetries    = 8
)

// Lock is an advisory lock on the data directory so two daemons never share
// one audit database.
type Lock struct {
	fileLock *flock.Flock
	path     string
}

// AcquireLock takes the data-dir lock, retrying briefly before giving up.
func AcquireLock(dataDir string) (*Lock, error) {
	path := filepath.Join(dataDir, "majordomo.lock")
	fl := flock.New(path)

	for i := 0; i < lockMaxRetries; i++ {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire data dir lock: %w", err)
		}
		if locked {
			slog.Debug("Data dir lock acquired", "path", path)
			return &Lock{fileLock: fl, path: path}, nil
		}
		time.Sleep(lockRetryInterval)
	}

	return nil, fmt.Errorf("data dir %s is locked by another process", dataDir)
}

// Release drops the lock. Safe to call once.
func (l *Lock) Release() error {
	if err := l.fileLock.Unlock(); err != nil {
		return fmt.Errorf("release data dir lock: %w", err)
	}
	slog.Debug("Data dir lock released", "path", l.path)
	return nil
}
