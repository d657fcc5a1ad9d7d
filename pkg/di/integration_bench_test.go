package di

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-memoize/cache"
	"github.com/goliatone/go-memoize/memoize"
)

// TestConcurrentAccess tests concurrent access to cached repository operations
func TestConcurrentAccess(t *testing.T) {
	config := cache.Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Second,
		EvictionPercentage: 10,
		EvictionInterval:   0,
	}

	container, err := NewContainer(config)
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	mockRepo := newMockUserRepository()
	cachedRepo := newCachedUsers(t, container, mockRepo)

	for i := 0; i < 100; i++ {
		mockRepo.Create(context.Background(), User{
			ID:       fmt.Sprintf("user-%d", i),
			Name:     fmt.Sprintf("User %d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			CreateTs: time.Now().Unix(),
		})
	}

	ctx := context.Background()
	const numGoroutines = 50
	const operationsPerGoroutine = 20

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*operationsPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := 0; j < operationsPerGoroutine; j++ {
				userID := fmt.Sprintf("user-%d", (workerID*operationsPerGoroutine+j)%100)

				if _, err := cachedRepo.GetByID(ctx, userID); err != nil {
					errs <- fmt.Errorf("worker %d operation %d GetByID failed: %v", workerID, j, err)
					continue
				}

				if j%5 == 0 {
					if _, _, err := cachedRepo.List(ctx); err != nil {
						errs <- fmt.Errorf("worker %d operation %d List failed: %v", workerID, j, err)
						continue
					}
				}

				if j%10 == 0 {
					if _, err := cachedRepo.Count(ctx); err != nil {
						errs <- fmt.Errorf("worker %d operation %d Count failed: %v", workerID, j, err)
					}
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var errorCount int
	for err := range errs {
		t.Error(err)
		errorCount++
		if errorCount > 10 {
			t.Error("... and more errors")
			break
		}
	}

	if errorCount > 0 {
		t.Fatalf("Concurrent access test failed with %d errors", errorCount)
	}

	// Concurrent misses on the same key may each reach the base repository,
	// but the cache must still absorb most reads.
	totalOperations := numGoroutines * operationsPerGoroutine
	getByIDCalls := mockRepo.getCallCount("GetByID")

	if getByIDCalls >= totalOperations {
		t.Errorf("Expected cache to reduce GetByID calls: got %d calls for %d operations", getByIDCalls, totalOperations)
	}

	t.Logf("Concurrent test completed: %d operations resulted in %d GetByID calls (%.1f%% cache hit rate)",
		totalOperations, getByIDCalls, float64(totalOperations-getByIDCalls)/float64(totalOperations)*100)
}

// TestConcurrentMemoizedFunction exercises one memoized function from many goroutines
func TestConcurrentMemoizedFunction(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	square, err := Memoize(container, func(x int) int { return x * x })
	if err != nil {
		t.Fatalf("Memoize() failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				x := (i + j) % 10
				if got := square(x); got != x*x {
					t.Errorf("square(%d) = %d", x, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

// BenchmarkCachedVsBaseRepository compares performance of cached vs base repository operations
func BenchmarkCachedVsBaseRepository(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("Failed to create DI container: %v", err)
	}

	mockRepo := newMockUserRepository()
	cachedRepo, err := NewCachedRepository(container, mockRepo)
	if err != nil {
		b.Fatalf("Failed to create cached repository: %v", err)
	}

	for i := 0; i < 1000; i++ {
		mockRepo.Create(context.Background(), User{
			ID:       fmt.Sprintf("bench-user-%d", i),
			Name:     fmt.Sprintf("Benchmark User %d", i),
			Email:    fmt.Sprintf("bench%d@example.com", i),
			CreateTs: time.Now().Unix(),
		})
	}

	ctx := context.Background()

	b.Run("base_repository_GetByID", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = mockRepo.GetByID(ctx, fmt.Sprintf("bench-user-%d", i%1000))
		}
	})

	for i := 0; i < 100; i++ {
		_, _ = cachedRepo.GetByID(ctx, fmt.Sprintf("bench-user-%d", i))
	}

	b.Run("cached_repository_GetByID_cache_hit", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = cachedRepo.GetByID(ctx, fmt.Sprintf("bench-user-%d", i%100))
		}
	})

	_, _, _ = cachedRepo.List(ctx)

	b.Run("cached_repository_List_cache_hit", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _, _ = cachedRepo.List(ctx)
		}
	})
}

func fibonacci(n int) int {
	if n < 2 {
		return n
	}
	return fibonacci(n-1) + fibonacci(n-2)
}

// BenchmarkFibonacci compares the naive recursion with a memoized one
func BenchmarkFibonacci(b *testing.B) {
	b.Run("naive", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fibonacci(25)
		}
	})

	b.Run("memoized", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var fib func(int) int
			fib = memoize.Memoize(func(n int) int {
				if n < 2 {
					return n
				}
				return fib(n-1) + fib(n-2)
			})
			_ = fib(25)
		}
	})
}

// BenchmarkConcurrentCacheAccess benchmarks performance under concurrent load
func BenchmarkConcurrentCacheAccess(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("Failed to create DI container: %v", err)
	}

	mockRepo := newMockUserRepository()
	cachedRepo, err := NewCachedRepository(container, mockRepo)
	if err != nil {
		b.Fatalf("Failed to create cached repository: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		user := User{ID: fmt.Sprintf("concurrent-user-%d", i), Name: fmt.Sprintf("Concurrent User %d", i)}
		mockRepo.Create(ctx, user)
		_, _ = cachedRepo.GetByID(ctx, user.ID)
	}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = cachedRepo.GetByID(ctx, fmt.Sprintf("concurrent-user-%d", i%100))
			i++
		}
	})
}
