// Package store persists scoring runs and their reviews in sqlite.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/report"
)

var ErrRunNotFound = errors.New("run not found")

const insertBatchSize = 500

// Run is one batch scoring of an input table.
type Run struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	InputPath  string    `json:"input_path"`
	Total      int       `json:"total"`
	Positive   int       `json:"positive"`
	Neutral    int       `json:"neutral"`
	Negative   int       `json:"negative"`
	Workers    int       `json:"workers"`
	DurationMs int64     `json:"duration_ms"`
}

// ReviewRecord is one scored review of a run.
type ReviewRecord struct {
	ID            uint              `json:"-" gorm:"primaryKey"`
	RunID         string            `json:"run_id" gorm:"size:36;index:idx_run_ordinal,priority:1"`
	Ordinal       int               `json:"ulasanId" gorm:"index:idx_run_ordinal,priority:2"`
	ProductID     string            `json:"produkId" gorm:"index"`
	User          string            `json:"pengguna"`
	Text          string            `json:"komentarUlasan"`
	Rating        *int              `json:"ratingUlasan"`
	Compound      float64           `json:"compound_score"`
	TextScore     float64           `json:"text_score"`
	Score         float64           `json:"skor"`
	Label         sentiment.Label   `json:"label" gorm:"index"`
	PositiveTerms []string          `json:"posWords" gorm:"serializer:json"`
	NegativeTerms []string          `json:"negWords" gorm:"serializer:json"`
	Aspects       sentiment.Aspects `json:"aspek" gorm:"serializer:json"`
}

// NewRecord maps one scored review to its row.
func NewRecord(ordinal int, productID, user string, rev sentiment.Review, res sentiment.Result) ReviewRecord {
	return ReviewRecord{
		Ordinal:       ordinal,
		ProductID:     productID,
		User:          user,
		Text:          rev.Text,
		Rating:        rev.Rating,
		Compound:      res.CompoundScore,
		TextScore:     res.TextScore,
		Score:         res.NormalizedScore,
		Label:         res.Label,
		PositiveTerms: res.PositiveTerms,
		NegativeTerms: res.NegativeTerms,
		Aspects:       res.Aspects,
	}
}

// Entry converts the row for the report aggregates.
func (r ReviewRecord) Entry() report.Entry {
	return report.Entry{
		ProductID:     r.ProductID,
		Text:          r.Text,
		Rating:        r.Rating,
		Compound:      r.Compound,
		TextScore:     r.TextScore,
		Label:         r.Label,
		PositiveTerms: r.PositiveTerms,
		NegativeTerms: r.NegativeTerms,
		Aspects:       r.Aspects,
	}
}

type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite file at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &ReviewRecord{}); err != nil {
		return nil, fmt.Errorf("store.Open: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun writes the run and its records in one transaction. A missing run
// ID is filled with a new uuid; records are stamped with it.
func (s *Store) SaveRun(ctx context.Context, run *Run, records []ReviewRecord) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			records[i].ID = 0
			records[i].RunID = run.ID
		}
		if err := tx.CreateInBatches(records, insertBatchSize).Error; err != nil {
			return fmt.Errorf("create records: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("SaveRun: %w", err)
	}
	return nil
}

func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	var runs []Run
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("ListRuns: %w", err)
	}
	return runs, nil
}

func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("LatestRun: %w", err)
	}
	return run, nil
}

func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("GetRun: %w", err)
	}
	return run, nil
}

// ResolveRun returns the run with id, or the latest run when id is empty.
func (s *Store) ResolveRun(ctx context.Context, id string) (Run, error) {
	if id == "" {
		return s.LatestRun(ctx)
	}
	return s.GetRun(ctx, id)
}

func (s *Store) reviews(ctx context.Context, runID string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&ReviewRecord{}).Where("run_id = ?", runID)
}

// ListReviews pages through a run newest ordinal first. An empty label
// matches every label; a non-positive limit means no limit.
func (s *Store) ListReviews(ctx context.Context, runID string, label sentiment.Label, limit, offset int) ([]ReviewRecord, error) {
	q := s.reviews(ctx, runID)
	if label != "" {
		q = q.Where("label = ?", label)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []ReviewRecord
	if err := q.Order("ordinal DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("ListReviews: %w", err)
	}
	return out, nil
}

// Records returns every review of a run in ordinal order.
func (s *Store) Records(ctx context.Context, runID string) ([]ReviewRecord, error) {
	var out []ReviewRecord
	if err := s.reviews(ctx, runID).Order("ordinal ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("Records: %w", err)
	}
	return out, nil
}

type labelCount struct {
	Label sentiment.Label
	N     int64
}

// LabelCounts has an entry for every label, zero when absent.
func (s *Store) LabelCounts(ctx context.Context, runID string) (map[sentiment.Label]int64, error) {
	var rows []labelCount
	err := s.reviews(ctx, runID).Select("label, COUNT(*) AS n").Group("label").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("LabelCounts: %w", err)
	}
	out := make(map[sentiment.Label]int64, len(sentiment.Labels))
	for _, l := range sentiment.Labels {
		out[l] = 0
	}
	for _, r := range rows {
		out[r.Label] = r.N
	}
	return out, nil
}

// ProductCount counts distinct non-empty product ids in a run.
func (s *Store) ProductCount(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := s.reviews(ctx, runID).Where("product_id <> ?", "").Distinct("product_id").Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("ProductCount: %w", err)
	}
	return n, nil
}

func (s *Store) RandomReviews(ctx context.Context, runID string, n int) ([]ReviewRecord, error) {
	var out []ReviewRecord
	if err := s.reviews(ctx, runID).Order("RANDOM()").Limit(n).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("RandomReviews: %w", err)
	}
	return out, nil
}
