package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// logFieldWorker is the log field that names the pool a message came from.
const logFieldWorker = "worker"

// PoolTask is one unit of bounded-concurrency work: a cluster ID paired with
// the function that runs that cluster's stage 1-3 pipeline. Run must be safe
// to call concurrently with other tasks' Run funcs — only the cluster
// identified by ID is ever touched by this particular call.
type PoolTask struct {
	ClusterID string
	Run       func(ctx context.Context) error
}

// PoolConfig configures a bounded worker pool.
type PoolConfig struct {
	// Name identifies the pool for logging.
	Name string

	// Size caps the number of tasks running at once. Per spec.md §5, this
	// should be set no higher than the LLM provider's rate limit, since
	// every task in the pool ultimately calls the same provider quota.
	Size int

	// Logger for the pool.
	Logger *zerolog.Logger
}

// RunPool drains tasks across a fixed-size set of goroutines and returns a
// map of cluster ID to the error that task produced (nil on success). It
// does not stop early on a task's failure — per spec.md §5, a failing
// cluster is skipped, not fatal to the run — but it does stop dispatching
// new tasks once ctx is canceled, returning ctx.Err() for any task that
// never got to run.
//
// RunPool fans a bounded, known-size batch of independent per-cluster pipelines out
// across Size workers and waits for all of them to finish — the
// "embarrassingly parallel but share a provider quota" shape spec.md §5
// describes for stages 1-3.
func RunPool(ctx context.Context, cfg PoolConfig, tasks []PoolTask) map[string]error {
	logger := getPoolLogger(cfg.Logger)

	size := cfg.Size
	if size <= 0 {
		size = 1
	}

	if size > len(tasks) {
		size = len(tasks)
	}

	results := make(map[string]error, len(tasks))

	var mu sync.Mutex

	if len(tasks) == 0 {
		return results
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Int("tasks", len(tasks)).Int("size", size).Msg("starting worker pool")
	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker pool drained")

	queue := make(chan PoolTask)

	var wg sync.WaitGroup

	for i := 0; i < size; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for task := range queue {
				err := runPoolTask(ctx, task, logger, cfg.Name)

				mu.Lock()
				results[task.ClusterID] = err
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break dispatch
		case queue <- task:
		}
	}

	close(queue)
	wg.Wait()

	// Any task never dispatched because the context was canceled mid-fan-out
	// still needs an entry, so callers can distinguish "ran and failed" from
	// "never ran".
	for _, task := range tasks {
		if _, ok := results[task.ClusterID]; !ok {
			results[task.ClusterID] = ctx.Err()
		}
	}

	return results
}

func runPoolTask(ctx context.Context, task PoolTask, logger *zerolog.Logger, poolName string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str(logFieldWorker, poolName).Str("cluster_id", task.ClusterID).Msg("recovered from panic in pool task")
			err = fmt.Errorf("cluster %s: recovered from panic: %v", task.ClusterID, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := task.Run(ctx); err != nil {
		logger.Error().Err(err).Str(logFieldWorker, poolName).Str("cluster_id", task.ClusterID).Msg("cluster task failed")

		return err
	}

	return nil
}

func getPoolLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()

		return &nop
	}

	return logger
}
