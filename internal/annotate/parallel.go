package annotate

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/biogo/hts/sam"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/ribo-framing/internal/align"
)

// RecordSource yields alignment records in input order.
type RecordSource interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*sam.Record, error)

	// Refs returns the reference names of the source header.
	Refs() *align.RefNames
}

// WorkItem holds a record ready for classification.
type WorkItem struct {
	Seq    int
	Record *sam.Record
}

// WorkResult holds the classification of a single record.
type WorkResult struct {
	Seq    int
	Record *sam.Record
	Result Result
	Err    error
}

// ParallelClassify classifies work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Classifier) ParallelClassify(items <-chan WorkItem, refs *align.RefNames, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := c.Classify(item.Record, refs)
				results <- WorkResult{
					Seq:    item.Seq,
					Record: item.Record,
					Result: res,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// ClassifyAll classifies every record of src and calls fn with each record
// and its result in input order. With more than one worker, records are read
// by one goroutine, classified by a pool and re-sequenced before fn sees them,
// so fn is never called concurrently. The first error stops the run.
func (c *Classifier) ClassifyAll(ctx context.Context, src RecordSource, workers int, fn func(*sam.Record, Result) error) (int, error) {
	if workers <= 1 {
		return c.classifySequential(ctx, src, fn)
	}

	c.logger.Info("classifying in parallel", zap.Int("workers", workers))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	items := make(chan WorkItem, 2*workers)

	g.Go(func() error {
		defer close(items)
		for seq := 0; ; seq++ {
			rec, err := src.Next()
			if err != nil {
				return fmt.Errorf("read alignment: %w", err)
			}
			if rec == nil {
				return nil
			}
			select {
			case items <- WorkItem{Seq: seq, Record: rec}:
			case <-gctx.Done():
				// The collector reports its own error.
				return nil
			}
		}
	})

	results := c.ParallelClassify(items, src.Refs(), workers)
	count := 0
	g.Go(func() error {
		return OrderedCollect(results, func(r WorkResult) error {
			err := r.Err
			if err == nil {
				count++
				err = fn(r.Record, r.Result)
			}
			if err != nil {
				cancel()
			}
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return count, err
	}
	return count, ctx.Err()
}

func (c *Classifier) classifySequential(ctx context.Context, src RecordSource, fn func(*sam.Record, Result) error) (int, error) {
	refs := src.Refs()
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		rec, err := src.Next()
		if err != nil {
			return count, fmt.Errorf("read alignment: %w", err)
		}
		if rec == nil {
			return count, nil
		}
		res, err := c.Classify(rec, refs)
		if err != nil {
			return count, err
		}
		count++
		if err := fn(rec, res); err != nil {
			return count, err
		}
	}
}
