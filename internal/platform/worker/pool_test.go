package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPool_RunsEveryTaskAndCollectsErrors(t *testing.T) {
	errBoom := errors.New("boom")

	tasks := []PoolTask{
		{ClusterID: "a", Run: func(ctx context.Context) error { return nil }},
		{ClusterID: "b", Run: func(ctx context.Context) error { return errBoom }},
		{ClusterID: "c", Run: func(ctx context.Context) error { return nil }},
	}

	results := RunPool(context.Background(), PoolConfig{Name: "test", Size: 2}, tasks)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results["a"] != nil {
		t.Errorf("expected cluster a to succeed, got %v", results["a"])
	}

	if !errors.Is(results["b"], errBoom) {
		t.Errorf("expected cluster b to fail with errBoom, got %v", results["b"])
	}

	if results["c"] != nil {
		t.Errorf("expected cluster c to succeed, got %v", results["c"])
	}
}

func TestRunPool_RespectsSizeCap(t *testing.T) {
	var inFlight int32

	var maxObserved int32

	tasks := make([]PoolTask, 0, 10)
	for i := 0; i < 10; i++ {
		tasks = append(tasks, PoolTask{
			ClusterID: string(rune('a' + i)),
			Run: func(ctx context.Context) error {
				cur := atomic.AddInt32(&inFlight, 1)

				for {
					observed := atomic.LoadInt32(&maxObserved)
					if cur <= observed || atomic.CompareAndSwapInt32(&maxObserved, observed, cur) {
						break
					}
				}

				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)

				return nil
			},
		})
	}

	results := RunPool(context.Background(), PoolConfig{Name: "test", Size: 3}, tasks)

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}

	if atomic.LoadInt32(&maxObserved) > 3 {
		t.Errorf("expected at most 3 concurrent tasks, observed %d", maxObserved)
	}
}

func TestRunPool_EmptyTaskListReturnsEmptyMap(t *testing.T) {
	results := RunPool(context.Background(), PoolConfig{Name: "test", Size: 4}, nil)

	if len(results) != 0 {
		t.Errorf("expected empty results, got %d entries", len(results))
	}
}

func TestRunPool_CanceledContextMarksUndispatchedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []PoolTask{
		{ClusterID: "a", Run: func(ctx context.Context) error { return nil }},
	}

	results := RunPool(ctx, PoolConfig{Name: "test", Size: 1}, tasks)

	if !errors.Is(results["a"], context.Canceled) {
		t.Errorf("expected cluster a to report context.Canceled, got %v", results["a"])
	}
}

func TestRunPool_RecoversPanicInTask(t *testing.T) {
	tasks := []PoolTask{
		{ClusterID: "a", Run: func(ctx context.Context) error { panic("unexpected") }},
		{ClusterID: "b", Run: func(ctx context.Context) error { return nil }},
	}

	results := RunPool(context.Background(), PoolConfig{Name: "test", Size: 2}, tasks)

	if results["a"] == nil {
		t.Error("expected cluster a's panic to surface as an error")
	}

	if results["b"] != nil {
		t.Errorf("expected cluster b to succeed despite cluster a's panic, got %v", results["b"])
	}
}
