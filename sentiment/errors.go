package sentiment

import (
	"errors"
	"fmt"
)

var (
	// ErrLexiconLoad marks a lexicon that could not be loaded or validated.
	// No scoring runs without a complete lexicon.
	ErrLexiconLoad = errors.New("lexicon load failure")

	// ErrWorkerFailure marks a batch that failed inside one of its chunks.
	ErrWorkerFailure = errors.New("worker failure")
)

// WorkerError reports the chunk and record that failed.
type WorkerError struct {
	Chunk  int
	Record int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("chunk %d record %d: %v", e.Chunk, e.Record, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

func (e *WorkerError) Is(target error) bool { return target == ErrWorkerFailure }
