package jobs

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
	"time"

	"github.com/iddaa-lens/laundry/pkg/database"
	"github.com/iddaa-lens/laundry/pkg/logger"
)

// LockManager provides mutual exclusion for named tasks
type LockManager interface {
	// AcquireLock tries to take the lock without waiting.
	// Returns true if it was acquired, false if someone else holds it.
	AcquireLock(ctx context.Context, name string) (bool, error)

	// ReleaseLock releases a lock taken with AcquireLock
	ReleaseLock(ctx context.Context, name string) error

	// IsLocked checks if the lock is currently held
	IsLocked(ctx context.Context, name string) (bool, error)

	// AcquireLockWithTimeout polls for the lock until timeout
	AcquireLockWithTimeout(ctx context.Context, name string, timeout time.Duration) (bool, error)
}

// PostgreSQLLockManager uses session-level PostgreSQL advisory locks. It must be
// given a single connection: advisory locks belong to the session that took them.
type PostgreSQLLockManager struct {
	db     database.DBTX
	logger *logger.Logger
}

func NewPostgreSQLLockManager(db database.DBTX) LockManager {
	return &PostgreSQLLockManager{
		db:     db,
		logger: logger.New("lock-manager"),
	}
}

// lockID maps a name to the int64 key advisory locks need
func lockID(name string) int64 {
	hash := md5.Sum([]byte("laundry:" + name))

	id := int64(0)
	for i := 0; i < 8; i++ {
		id = id<<8 + int64(hash[i])
	}
	if id < 0 {
		id = -id
	}
	return id
}

func (p *PostgreSQLLockManager) AcquireLock(ctx context.Context, name string) (bool, error) {
	id := lockID(name)

	var acquired bool
	if err := p.db.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", id).Scan(&acquired); err != nil {
		p.logger.Error().
			Err(err).
			Str("lock_name", name).
			Int64("lock_id", id).
			Str("action", "acquire_lock_failed").
			Msg("Failed to acquire advisory lock")
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	p.logger.Debug().
		Str("lock_name", name).
		Int64("lock_id", id).
		Bool("acquired", acquired).
		Str("action", "acquire_lock").
		Msg("Tried advisory lock")
	return acquired, nil
}

func (p *PostgreSQLLockManager) ReleaseLock(ctx context.Context, name string) error {
	id := lockID(name)

	var released bool
	if err := p.db.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", id).Scan(&released); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	if !released {
		p.logger.Warn().
			Str("lock_name", name).
			Int64("lock_id", id).
			Str("action", "lock_not_held").
			Msg("Attempted to release lock that was not held")
	}
	return nil
}

func (p *PostgreSQLLockManager) IsLocked(ctx context.Context, name string) (bool, error) {
	id := lockID(name)

	var free bool
	if err := p.db.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", id).Scan(&free); err != nil {
		return false, fmt.Errorf("failed to check lock %s: %w", name, err)
	}
	if !free {
		return true, nil
	}

	if _, err := p.db.Exec(ctx, "SELECT pg_advisory_unlock($1)", id); err != nil {
		p.logger.Warn().
			Err(err).
			Str("lock_name", name).
			Msg("Failed to release lock after check")
	}
	return false, nil
}

func (p *PostgreSQLLockManager) AcquireLockWithTimeout(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	return pollLock(ctx, p, name, timeout)
}

// LocalLockManager guards tasks within one process
type LocalLockManager struct {
	mu    sync.Mutex
	locks map[string]bool
}

func NewLocalLockManager() *LocalLockManager {
	return &LocalLockManager{locks: make(map[string]bool)}
}

func (l *LocalLockManager) AcquireLock(_ context.Context, name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[name] {
		return false, nil
	}
	l.locks[name] = true
	return true, nil
}

func (l *LocalLockManager) ReleaseLock(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, name)
	return nil
}

func (l *LocalLockManager) IsLocked(_ context.Context, name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locks[name], nil
}

func (l *LocalLockManager) AcquireLockWithTimeout(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	return pollLock(ctx, l, name, timeout)
}

// pollLock retries AcquireLock every 100ms until it succeeds or timeout passes
func pollLock(ctx context.Context, m LockManager, name string, timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acquired, err := m.AcquireLock(ctx, name)
	if err != nil || acquired {
		return acquired, err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			acquired, err := m.AcquireLock(ctx, name)
			if err != nil || acquired {
				return acquired, err
			}
		}
	}
}

// LockGuard remembers whether it holds its lock so Release is safe to defer
type LockGuard struct {
	lockManager LockManager
	name        string
	acquired    bool
}

func NewLockGuard(lockManager LockManager, name string) *LockGuard {
	return &LockGuard{lockManager: lockManager, name: name}
}

func (lg *LockGuard) Acquire(ctx context.Context) (bool, error) {
	acquired, err := lg.lockManager.AcquireLock(ctx, lg.name)
	if err != nil {
		return false, err
	}
	lg.acquired = acquired
	return acquired, nil
}

func (lg *LockGuard) AcquireWithTimeout(ctx context.Context, timeout time.Duration) (bool, error) {
	acquired, err := lg.lockManager.AcquireLockWithTimeout(ctx, lg.name, timeout)
	if err != nil {
		return false, err
	}
	lg.acquired = acquired
	return acquired, nil
}

// Release releases the lock if this guard holds it
func (lg *LockGuard) Release(ctx context.Context) error {
	if !lg.acquired {
		return nil
	}
	if err := lg.lockManager.ReleaseLock(ctx, lg.name); err != nil {
		return err
	}
	lg.acquired = false
	return nil
}

func (lg *LockGuard) IsAcquired() bool {
	return lg.acquired
}
