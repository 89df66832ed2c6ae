package mapreduce

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// KeyVal is one shuffled pair.
type KeyVal struct {
	Key string
	Val string
}

// MapFunc turns one input line into shuffle pairs. Per-record problems
// are the map function's business (count and skip, or side-channel);
// a returned error is fatal and aborts the whole job.
type MapFunc func(ctx context.Context, line string) ([]KeyVal, error)

// ReduceFunc folds every value seen for key into output lines. It is
// called exactly once per key, after the map phase has finished.
type ReduceFunc func(ctx context.Context, key string, vals []string) ([]string, error)

// shuffleDepth is the per-partition channel buffer.
const shuffleDepth = 256

// Job describes one map/reduce run.
type Job struct {
	Mappers  int
	Reducers int
	Map      MapFunc
	Reduce   ReduceFunc
	Storage  Storage
}

// Run consumes lines until the channel closes, shuffles map output by
// key and calls emit for every reduce output line. emit is serialized
// by the job. Run blocks until the job finishes or fails.
func (j *Job) Run(ctx context.Context, lines <-chan string, emit func(line string) error) error {
	if j.Mappers < 1 || j.Reducers < 1 {
		return fmt.Errorf("mapreduce: need at least one mapper and one reducer, got %d/%d", j.Mappers, j.Reducers)
	}

	shuffle := make([]chan KeyVal, j.Reducers)
	for i := range shuffle {
		shuffle[i] = make(chan KeyVal, shuffleDepth)
	}

	g, gctx := errgroup.WithContext(ctx)

	var mapWG sync.WaitGroup
	mapWG.Add(j.Mappers)
	go func() {
		// All mappers done: the shuffle is complete and reducers may fold.
		mapWG.Wait()
		for _, ch := range shuffle {
			close(ch)
		}
	}()

	for m := 0; m < j.Mappers; m++ {
		g.Go(func() error {
			defer mapWG.Done()
			return j.runMapper(gctx, lines, shuffle)
		})
	}

	var emitMu sync.Mutex
	for r := 0; r < j.Reducers; r++ {
		r := r
		g.Go(func() error {
			return j.runReducer(gctx, r, shuffle[r], func(line string) error {
				emitMu.Lock()
				defer emitMu.Unlock()
				return emit(line)
			})
		})
	}

	return g.Wait()
}

func (j *Job) runMapper(ctx context.Context, lines <-chan string, shuffle []chan KeyVal) error {
	for {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, open := <-lines:
			if !open {
				return nil
			}
			line = l
		}

		kvs, err := j.Map(ctx, line)
		if err != nil {
			return err
		}

		for _, kv := range kvs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case shuffle[Partition(kv.Key, j.Reducers)] <- kv:
			}
		}
	}
}

func (j *Job) runReducer(ctx context.Context, id int, in <-chan KeyVal, emit func(string) error) error {
	bucket := strconv.Itoa(id)

recv:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case kv, open := <-in:
			if !open {
				break recv
			}
			if err := j.Storage.Append(ctx, bucket, kv.Key, []string{kv.Val}); err != nil {
				return fmt.Errorf("mapreduce: reducer %d: %w", id, err)
			}
		}
	}

	keys, err := j.Storage.Keys(ctx, bucket)
	if err != nil {
		return fmt.Errorf("mapreduce: reducer %d: %w", id, err)
	}

	for _, key := range keys {
		vals, err := j.Storage.Get(ctx, bucket, key)
		if err != nil {
			return fmt.Errorf("mapreduce: reducer %d: %w", id, err)
		}
		out, err := j.Reduce(ctx, key, vals)
		if err != nil {
			return err
		}
		for _, line := range out {
			if err := emit(line); err != nil {
				return err
			}
		}
	}
	return nil
}
