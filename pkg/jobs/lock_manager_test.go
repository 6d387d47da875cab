package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockDB implements database.DBTX with an in-memory advisory lock table
type MockDB struct {
	mu    sync.Mutex
	locks map[int64]bool
}

func NewMockDB() *MockDB {
	return &MockDB{
		locks: make(map[int64]bool),
	}
}

func (m *MockDB) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(args) > 0 {
		id := args[0].(int64)

		switch query {
		case "SELECT pg_try_advisory_lock($1)":
			if m.locks[id] {
				return &MockRow{value: false}
			}
			m.locks[id] = true
			return &MockRow{value: true}
		case "SELECT pg_advisory_unlock($1)":
			held := m.locks[id]
			delete(m.locks, id)
			return &MockRow{value: held}
		}
	}

	return &MockRow{err: errors.New("unexpected query: " + query)}
}

func (m *MockDB) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *MockDB) Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	if query == "SELECT pg_advisory_unlock($1)" {
		m.mu.Lock()
		delete(m.locks, args[0].(int64))
		m.mu.Unlock()
	}
	return pgconn.CommandTag{}, nil
}

// MockRow implements pgx.Row for testing
type MockRow struct {
	value interface{}
	err   error
}

func (m *MockRow) Scan(dest ...interface{}) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		switch v := dest[0].(type) {
		case *bool:
			*v = m.value.(bool)
		}
	}
	return nil
}

func TestLockManagers(t *testing.T) {
	managers := map[string]LockManager{
		"postgres": NewPostgreSQLLockManager(NewMockDB()),
		"local":    NewLocalLockManager(),
	}

	for name, lockManager := range managers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			acquired, err := lockManager.AcquireLock(ctx, "laundry_tick")
			if err != nil {
				t.Fatalf("Failed to acquire lock: %v", err)
			}
			if !acquired {
				t.Fatal("Expected to acquire lock but didn't")
			}

			acquired, err = lockManager.AcquireLock(ctx, "laundry_tick")
			if err != nil {
				t.Fatalf("Failed to attempt second lock acquisition: %v", err)
			}
			if acquired {
				t.Fatal("Expected second lock acquisition to fail but it succeeded")
			}

			locked, err := lockManager.IsLocked(ctx, "laundry_tick")
			if err != nil {
				t.Fatalf("Failed to check lock status: %v", err)
			}
			if !locked {
				t.Fatal("Expected lock to be held")
			}

			if err := lockManager.ReleaseLock(ctx, "laundry_tick"); err != nil {
				t.Fatalf("Failed to release lock: %v", err)
			}

			locked, err = lockManager.IsLocked(ctx, "laundry_tick")
			if err != nil {
				t.Fatalf("Failed to check lock status: %v", err)
			}
			if locked {
				t.Fatal("Expected lock to be free after release")
			}

			acquired, err = lockManager.AcquireLock(ctx, "laundry_tick")
			if err != nil || !acquired {
				t.Fatalf("Expected to acquire lock after release, got %v, %v", acquired, err)
			}
		})
	}
}

func TestLockGuard(t *testing.T) {
	lockManager := NewPostgreSQLLockManager(NewMockDB())
	ctx := context.Background()

	guard := NewLockGuard(lockManager, "guard-test")
	acquired, err := guard.Acquire(ctx)
	if err != nil {
		t.Fatalf("Failed to acquire lock with guard: %v", err)
	}
	if !acquired || !guard.IsAcquired() {
		t.Fatal("Expected guard to hold the lock")
	}

	guard2 := NewLockGuard(lockManager, "guard-test")
	acquired, err = guard2.Acquire(ctx)
	if err != nil {
		t.Fatalf("Failed to attempt second guard acquisition: %v", err)
	}
	if acquired {
		t.Fatal("Expected second guard acquisition to fail but it succeeded")
	}

	// releasing a guard that never acquired is a no-op
	if err := guard2.Release(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := guard.Release(ctx); err != nil {
		t.Fatalf("Failed to release lock with guard: %v", err)
	}
	if guard.IsAcquired() {
		t.Fatal("Guard should report as not acquired after release")
	}

	acquired, err = guard2.Acquire(ctx)
	if err != nil || !acquired {
		t.Fatalf("Expected second guard to acquire after release, got %v, %v", acquired, err)
	}
}

func TestLockTimeout(t *testing.T) {
	lockManager := NewLocalLockManager()
	ctx := context.Background()

	if acquired, _ := lockManager.AcquireLock(ctx, "timeout-test"); !acquired {
		t.Fatal("Expected to acquire initial lock")
	}

	start := time.Now()
	acquired, err := lockManager.AcquireLockWithTimeout(ctx, "timeout-test", 200*time.Millisecond)
	duration := time.Since(start)

	if err == nil {
		t.Fatal("Expected timeout error but didn't get one")
	}
	if acquired {
		t.Fatal("Expected timeout to fail acquisition but it succeeded")
	}
	if duration < 150*time.Millisecond {
		t.Fatalf("Expected to wait for timeout but only waited %v", duration)
	}

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = lockManager.ReleaseLock(ctx, "timeout-test")
	}()
	acquired, err = lockManager.AcquireLockWithTimeout(ctx, "timeout-test", 2*time.Second)
	if err != nil || !acquired {
		t.Fatalf("Expected to acquire once released, got %v, %v", acquired, err)
	}
}

func TestLockID(t *testing.T) {
	id1 := lockID("laundry_tick")
	id2 := lockID("laundry_tick")
	if id1 != id2 {
		t.Fatalf("Expected same lock ID for same name, got %d and %d", id1, id2)
	}

	if id3 := lockID("other"); id1 == id3 {
		t.Fatalf("Expected different lock IDs for different names, both got %d", id1)
	}

	if id1 < 0 {
		t.Fatalf("Expected non-negative lock ID, got %d", id1)
	}
}

func TestLockQueryError(t *testing.T) {
	lockManager := NewPostgreSQLLockManager(&errDB{MockDB: NewMockDB()})

	if _, err := lockManager.AcquireLock(context.Background(), "laundry_tick"); err == nil {
		t.Fatal("Expected error from failing database")
	}
}

type errDB struct {
	*MockDB
}

func (e *errDB) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return &MockRow{err: errors.New("connection reset")}
}
