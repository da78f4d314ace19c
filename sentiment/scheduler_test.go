package sentiment

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestPartition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n, workers int
		want       []Chunk
	}{
		{0, 4, nil},
		{10, 3, []Chunk{{0, 0, 4}, {1, 4, 8}, {2, 8, 10}}},
		{9, 3, []Chunk{{0, 0, 3}, {1, 3, 6}, {2, 6, 9}}},
		{2, 8, []Chunk{{0, 0, 1}, {1, 1, 2}}},
		{5, 0, []Chunk{{0, 0, 5}}},
		{5, 1, []Chunk{{0, 0, 5}}},
		{7, 7, []Chunk{{0, 0, 1}, {1, 1, 2}, {2, 2, 3}, {3, 3, 4}, {4, 4, 5}, {5, 5, 6}, {6, 6, 7}}},
	}
	for _, tc := range cases {
		got := Partition(tc.n, tc.workers)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Partition(%d,%d)=%v, want %v", tc.n, tc.workers, got, tc.want)
		}
	}
}

func TestPartition_CoversInputContiguously(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 50; n++ {
		for w := 1; w <= 12; w++ {
			chunks := Partition(n, w)
			if len(chunks) > w {
				t.Fatalf("n=%d w=%d: %d chunks", n, w, len(chunks))
			}
			next := 0
			for i, c := range chunks {
				if c.Index != i || c.Start != next || c.Len() <= 0 {
					t.Fatalf("n=%d w=%d: bad chunk %+v", n, w, c)
				}
				next = c.End
			}
			if next != n {
				t.Fatalf("n=%d w=%d: covered %d", n, w, next)
			}
		}
	}
}

func sampleReviews(n int) []Review {
	texts := []string{
		"Bagus banget, bahan adem",
		"",
		"pengiriman lambat dan barang rusak",
		"Kecewa, warna beda",
		"murah tapi kualitas oke",
		"   ",
		"ukuran pas, ramah penjualnya",
	}
	out := make([]Review, n)
	for i := range out {
		r := Review{Text: fmt.Sprintf("%s #%d", texts[i%len(texts)], i)}
		if i%len(texts) == 1 || i%len(texts) == 5 {
			r.Text = texts[i%len(texts)]
		}
		if i%3 != 0 {
			r.Rating = Rating(1 + i%5)
		}
		out[i] = r
	}
	return out
}

func TestScoreAll_WorkerCountDoesNotChangeResults(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	reviews := sampleReviews(103)

	single := &Scheduler{Lexicon: lex, Workers: 1}
	want, err := single.ScoreAll(context.Background(), reviews)
	if err != nil {
		t.Fatalf("ScoreAll(1): %v", err)
	}
	if len(want) != len(reviews) {
		t.Fatalf("len=%d, want %d", len(want), len(reviews))
	}

	for _, w := range []int{2, 4, 7, 200} {
		s := &Scheduler{Lexicon: lex, Workers: w}
		got, err := s.ScoreAll(context.Background(), reviews)
		if err != nil {
			t.Fatalf("ScoreAll(%d): %v", w, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("workers=%d results differ from single worker", w)
		}
	}
}

func TestScoreAll_PreservesOrder(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	reviews := sampleReviews(40)
	s := &Scheduler{Lexicon: lex, Workers: 6}
	got, err := s.ScoreAll(context.Background(), reviews)
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	for i, r := range reviews {
		if got[i].NormalizedText != Normalize(r.Text) {
			t.Fatalf("index %d: NormalizedText=%q, want %q", i, got[i].NormalizedText, Normalize(r.Text))
		}
	}
}

func TestScoreAll_Empty(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	got, err := (&Scheduler{Lexicon: lex}).ScoreAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got=%v", got)
	}
}

func TestScoreAll_NilLexicon(t *testing.T) {
	t.Parallel()

	_, err := (&Scheduler{}).ScoreAll(context.Background(), sampleReviews(3))
	if !errors.Is(err, ErrLexiconLoad) {
		t.Fatalf("err=%v, want ErrLexiconLoad", err)
	}
}

func TestScoreAll_WorkerErrorFailsBatch(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	boom := errors.New("boom")
	s := &Scheduler{
		Lexicon: lex,
		Workers: 4,
		score: func(e *Engine, r Review) (Result, error) {
			if r.Text == "bad" {
				return Result{}, boom
			}
			return e.Score(r), nil
		},
	}
	reviews := sampleReviews(20)
	reviews[13].Text = "bad"

	got, err := s.ScoreAll(context.Background(), reviews)
	if got != nil {
		t.Fatalf("expected no partial results, got %d", len(got))
	}
	if !errors.Is(err, ErrWorkerFailure) || !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	var we *WorkerError
	if !errors.As(err, &we) {
		t.Fatalf("err=%T", err)
	}
	if we.Record != 13 || we.Chunk != 2 {
		t.Fatalf("Chunk=%d Record=%d", we.Chunk, we.Record)
	}
}

func TestScoreAll_PanicBecomesWorkerError(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	s := &Scheduler{
		Lexicon: lex,
		Workers: 2,
		score: func(e *Engine, r Review) (Result, error) {
			if r.Text == "panic" {
				panic("corrupt record")
			}
			return e.Score(r), nil
		},
	}
	reviews := sampleReviews(6)
	reviews[1].Text = "panic"

	_, err = s.ScoreAll(context.Background(), reviews)
	var we *WorkerError
	if !errors.As(err, &we) {
		t.Fatalf("err=%v", err)
	}
	if we.Chunk != 0 || we.Record != 1 {
		t.Fatalf("Chunk=%d Record=%d", we.Chunk, we.Record)
	}
}

func TestScoreAll_Canceled(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Scheduler{Lexicon: lex, Workers: 2}).ScoreAll(ctx, sampleReviews(10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestScoreAll_Progress(t *testing.T) {
	t.Parallel()

	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	var mu sync.Mutex
	calls := 0
	maxDone := 0
	s := &Scheduler{
		Lexicon: lex,
		Workers: 3,
		Progress: func(c Chunk, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if total != 10 {
				t.Errorf("total=%d", total)
			}
			if done > maxDone {
				maxDone = done
			}
		},
	}
	if _, err := s.ScoreAll(context.Background(), sampleReviews(10)); err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if calls != 3 || maxDone != 10 {
		t.Fatalf("calls=%d maxDone=%d", calls, maxDone)
	}
}
