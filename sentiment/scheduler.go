package sentiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Chunk is a contiguous half-open range [Start, End) of the input.
type Chunk struct {
	Index int
	Start int
	End   int
}

func (c Chunk) Len() int { return c.End - c.Start }

// Partition splits n records into at most workers contiguous chunks of
// ceil(n/workers) records; the last chunk may be shorter.
func Partition(n, workers int) []Chunk {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	chunks := make([]Chunk, 0, workers)
	for start := 0; start < n; start += size {
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, End: min(start+size, n)})
	}
	return chunks
}

// DefaultWorkers is the host's CPU count, at least 1.
func DefaultWorkers() int {
	if n := runtime.NumCPU(); n > 1 {
		return n
	}
	return 1
}

// ProgressFunc is called once per finished chunk with the running total of
// scored records. It may be called from several goroutines at once.
type ProgressFunc func(c Chunk, done, total int)

// Scheduler scores a review set in parallel chunks and reassembles the
// results in input order.
type Scheduler struct {
	Lexicon  *Lexicon
	Workers  int
	Progress ProgressFunc

	score func(*Engine, Review) (Result, error)
}

// ScoreAll returns one Result per review, index for index. Any failing
// chunk fails the whole batch and no partial results are returned.
func (s *Scheduler) ScoreAll(ctx context.Context, reviews []Review) ([]Result, error) {
	if s.Lexicon == nil {
		return nil, fmt.Errorf("ScoreAll: %w: %w", ErrLexiconLoad, errNilLexicon)
	}
	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	chunks := Partition(len(reviews), workers)
	if len(chunks) == 0 {
		return []Result{}, nil
	}

	// Every worker gets its own engine, built before anything runs.
	engines := make([]*Engine, len(chunks))
	for i := range chunks {
		e, err := NewEngine(s.Lexicon)
		if err != nil {
			return nil, fmt.Errorf("ScoreAll: engine: %w", err)
		}
		engines[i] = e
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parts := make([][]Result, len(chunks))
	errCh := make(chan error, len(chunks))
	var done int64

	wg := sync.WaitGroup{}
	for _, c := range chunks {
		wg.Add(1)
		go func(c Chunk) {
			defer wg.Done()
			out, err := s.runChunk(ctx, c, engines[c.Index], reviews[c.Start:c.End])
			if err != nil {
				errCh <- err
				cancel()
				return
			}
			parts[c.Index] = out
			n := atomic.AddInt64(&done, int64(len(out)))
			if s.Progress != nil {
				s.Progress(c, int(n), len(reviews))
			}
		}(c)
	}
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if first == nil || (errors.Is(err, ErrWorkerFailure) && !errors.Is(first, ErrWorkerFailure)) {
			first = err
		}
	}
	if first != nil {
		return nil, fmt.Errorf("ScoreAll: %w", first)
	}

	results := make([]Result, 0, len(reviews))
	for _, p := range parts {
		results = append(results, p...)
	}
	return results, nil
}

func (s *Scheduler) runChunk(ctx context.Context, c Chunk, e *Engine, batch []Review) (out []Result, err error) {
	i := 0
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &WorkerError{Chunk: c.Index, Record: c.Start + i, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	score := s.score
	if score == nil {
		score = func(e *Engine, r Review) (Result, error) { return e.Score(r), nil }
	}

	out = make([]Result, 0, len(batch))
	for ; i < len(batch); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := score(e, batch[i])
		if err != nil {
			return nil, &WorkerError{Chunk: c.Index, Record: c.Start + i, Err: err}
		}
		out = append(out, res)
	}
	return out, nil
}
