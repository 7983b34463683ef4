package migrate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
	"github.com/sourcegraph/conc/pool"
)

var processingLog = logger.New("migrate:processing")

// ResultState classifies the outcome of processing one item.
type ResultState int

const (
	// ResultValid means the item was processed and Output is set.
	ResultValid ResultState = iota
	// ResultNotFound means the remote answered 404; tolerated in lookups.
	ResultNotFound
	// ResultError means processing failed; Err is set.
	ResultError
	// ResultCancelled means the batch was cancelled before or during
	// this item.
	ResultCancelled
)

// Result is one slot of a processed batch, in input order.
type Result[I, O any] struct {
	Input  I
	Output O
	State  ResultState
	Err    error
}

// Valid reports whether this slot holds a usable output.
func (r Result[I, O]) Valid() bool { return r.State == ResultValid }

// ProcessOptions configures a batch run.
type ProcessOptions[I any] struct {
	// Parallel is the maximum number of concurrent process invocations.
	// Values below 1 mean serial.
	Parallel int
	// FailOnError cancels the batch on the first error and propagates it.
	// Otherwise errors are recorded in their result slot and the batch
	// continues.
	FailOnError bool
	// ItemInfo names an item for progress and error messages.
	ItemInfo func(I) string
	// Progress, when set, is invoked after every completion with the
	// rounded percentage and the completed item's info string. Calls are
	// serialized; implementations need no locking.
	Progress func(percent int, info string)
}

// ProcessItems runs process over items with bounded parallelism.
// Results are returned in input order regardless of completion order.
// Cancellation of ctx prevents scheduling of further items; in-flight
// items run to completion and the remaining slots are marked cancelled.
//
// The returned error is non-nil only for FailOnError batches, and is
// then the first error encountered.
func ProcessItems[I, O any](ctx context.Context, items []I, opts ProcessOptions[I], process func(context.Context, I) (O, error)) ([]Result[I, O], error) {
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}
	total := len(items)
	processingLog.Printf("Processing %d items with parallelism %d (failOnError=%v)", total, parallel, opts.FailOnError)

	results := make([]Result[I, O], total)
	for i := range results {
		results[i].Input = items[i]
		results[i].State = ResultCancelled
	}
	if total == 0 {
		return results, nil
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		done      atomic.Int64
		progressM sync.Mutex
		failOnce  sync.Once
		firstErr  error
	)

	p := pool.New().WithMaxGoroutines(parallel)
	for i := range items {
		if batchCtx.Err() != nil {
			break
		}
		p.Go(func() {
			slot := &results[i]
			if batchCtx.Err() != nil {
				slot.State = ResultCancelled
				return
			}

			output, err := process(batchCtx, slot.Input)
			switch {
			case err == nil:
				slot.State = ResultValid
				slot.Output = output
			case kontent.IsNotFound(err):
				slot.State = ResultNotFound
				slot.Err = err
			case errors.Is(err, context.Canceled):
				slot.State = ResultCancelled
				slot.Err = err
			default:
				slot.State = ResultError
				slot.Err = err
				if opts.ItemInfo != nil {
					processingLog.Printf("Item %q failed: %v", opts.ItemInfo(slot.Input), err)
				}
				if opts.FailOnError {
					failOnce.Do(func() {
						firstErr = fmt.Errorf("processing %q: %w", itemInfo(opts, slot.Input), err)
						cancel()
					})
				}
			}

			completed := done.Add(1)
			if opts.Progress != nil {
				percent := int(math.Round(float64(completed) / float64(total) * 100))
				progressM.Lock()
				opts.Progress(percent, itemInfo(opts, slot.Input))
				progressM.Unlock()
			}
		})
	}
	p.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

func itemInfo[I any](opts ProcessOptions[I], input I) string {
	if opts.ItemInfo == nil {
		return ""
	}
	return opts.ItemInfo(input)
}
