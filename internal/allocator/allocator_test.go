package allocator_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stemsi/klausurgen/internal/allocator"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "counter.db") + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFreshCounterStartsAt100001(t *testing.T) {
	ctx := context.Background()

	sqliteAlloc, err := allocator.NewSQLite(ctx, openSQLite(t))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}

	allocators := map[string]allocator.Allocator{
		"memory": allocator.NewMemory(),
		"sqlite": sqliteAlloc,
	}

	for name, a := range allocators {
		t.Run(name, func(t *testing.T) {
			want := []int64{100001, 100002, 100003}
			for i, w := range want {
				got, err := a.Next(ctx)
				if err != nil {
					t.Fatalf("Next #%d: %v", i, err)
				}
				if got != w {
					t.Errorf("Next #%d = %d, want %d", i, got, w)
				}
			}
		})
	}
}

func TestSQLiteCounterSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	first, err := allocator.NewSQLite(ctx, db)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := first.Next(ctx); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}

	second, err := allocator.NewSQLite(ctx, db)
	if err != nil {
		t.Fatalf("NewSQLite again: %v", err)
	}
	got, err := second.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != 100004 {
		t.Errorf("Next after reopen = %d, want 100004", got)
	}
}

func TestConcurrentAllocationsAreUnique(t *testing.T) {
	ctx := context.Background()
	sqliteAlloc, err := allocator.NewSQLite(ctx, openSQLite(t))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}

	for name, a := range map[string]allocator.Allocator{
		"memory": allocator.NewMemoryFrom(500),
		"sqlite": sqliteAlloc,
	} {
		t.Run(name, func(t *testing.T) {
			const workers, perWorker = 8, 10

			var (
				mu   sync.Mutex
				seen = make(map[int64]bool)
				wg   sync.WaitGroup
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						id, err := a.Next(ctx)
						if err != nil {
							t.Errorf("Next: %v", err)
							return
						}
						mu.Lock()
						if seen[id] {
							t.Errorf("id %d handed out twice", id)
						}
						seen[id] = true
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if len(seen) != workers*perWorker {
				t.Errorf("got %d unique ids, want %d", len(seen), workers*perWorker)
			}
		})
	}
}

func TestSQLiteUnavailable(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	a, err := allocator.NewSQLite(ctx, db)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	db.Close()

	if _, err := a.Next(ctx); !errors.Is(err, allocator.ErrStorageUnavailable) {
		t.Errorf("Next on closed db err = %v, want ErrStorageUnavailable", err)
	}
}

func TestMemoryCurrent(t *testing.T) {
	m := allocator.NewMemory()
	if m.Current() != allocator.Start {
		t.Errorf("Current() on fresh counter = %d", m.Current())
	}
	id, _ := m.Next(context.Background())
	if m.Current() != id {
		t.Errorf("Current() = %d, want %d", m.Current(), id)
	}
}

func TestMemoryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := allocator.NewMemory()
	_, err := m.Next(ctx)
	if !errors.Is(err, allocator.ErrStorageUnavailable) || !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want ErrStorageUnavailable wrapping context.Canceled", err)
	}
	if m.Current() != allocator.Start {
		t.Errorf("cancelled call advanced the counter to %d", m.Current())
	}
}
