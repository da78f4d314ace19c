// Package api serves the dashboard endpoints over stored runs.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/report"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/store"
)

const (
	defaultPageSize = 50
	topKeywordCount = 7
	recentCount     = 3
	topIssueCount   = 3
)

// Store is the read side of store.Store the handlers need.
type Store interface {
	ListRuns(ctx context.Context) ([]store.Run, error)
	ResolveRun(ctx context.Context, id string) (store.Run, error)
	ListReviews(ctx context.Context, runID string, label sentiment.Label, limit, offset int) ([]store.ReviewRecord, error)
	Records(ctx context.Context, runID string) ([]store.ReviewRecord, error)
	LabelCounts(ctx context.Context, runID string) (map[sentiment.Label]int64, error)
	ProductCount(ctx context.Context, runID string) (int64, error)
	RandomReviews(ctx context.Context, runID string, n int) ([]store.ReviewRecord, error)
}

type Handler struct {
	Store Store
	Log   logrus.FieldLogger
}

func New(s Store, log logrus.FieldLogger) *Handler {
	return &Handler{Store: s, Log: log}
}

// Register mounts every route under /api.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api")
	g.GET("/runs", h.listRuns)
	g.GET("/sentimen", h.listReviews)
	g.GET("/sentimen/stats", h.stats)
	g.GET("/sentimen/top-keywords", h.topKeywords)
	g.GET("/sentimen/recent", h.recent)
	g.GET("/sentimen/produk-count", h.productCount)
	g.GET("/sentimen/analysis", h.analysis)
}

// RequestLogger replaces gin's logger with one logrus line per request.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.Log.WithError(err).WithField("op", op).Error("handler failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handler) run(c *gin.Context) (store.Run, error) {
	return h.Store.ResolveRun(c.Request.Context(), c.Query("run"))
}

func (h *Handler) listRuns(c *gin.Context) {
	runs, err := h.Store.ListRuns(c.Request.Context())
	if err != nil {
		h.fail(c, "runs", err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Handler) listReviews(c *gin.Context) {
	label := sentiment.Label(c.Query("label"))
	switch label {
	case "", sentiment.LabelPositive, sentiment.LabelNeutral, sentiment.LabelNegative:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown label " + strconv.Quote(string(label))})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	run, err := h.run(c)
	if err != nil {
		h.fail(c, "sentimen", err)
		return
	}
	reviews, err := h.Store.ListReviews(c.Request.Context(), run.ID, label, limit, offset)
	if err != nil {
		h.fail(c, "sentimen", err)
		return
	}
	if reviews == nil {
		reviews = []store.ReviewRecord{}
	}
	c.JSON(http.StatusOK, reviews)
}

type distributionItem struct {
	Name  sentiment.Label `json:"name"`
	Value float64         `json:"value"`
	Count int64           `json:"count"`
}

func (h *Handler) stats(c *gin.Context) {
	ctx := c.Request.Context()
	run, err := h.run(c)
	if err != nil {
		h.fail(c, "stats", err)
		return
	}
	counts, err := h.Store.LabelCounts(ctx, run.ID)
	if err != nil {
		h.fail(c, "stats", err)
		return
	}
	products, err := h.Store.ProductCount(ctx, run.ID)
	if err != nil {
		h.fail(c, "stats", err)
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	dist := []distributionItem{}
	for _, l := range sentiment.Labels {
		if counts[l] == 0 {
			continue
		}
		dist = append(dist, distributionItem{Name: l, Value: report.Percent(int(counts[l]), int(total)), Count: counts[l]})
	}
	h.Log.WithFields(logrus.Fields{"run": run.ID, "total": total, "products": products}).Debug("stats")
	c.JSON(http.StatusOK, gin.H{
		"totalUlasan":           total,
		"totalProduk":           products,
		"sentimentDistribution": dist,
	})
}

func (h *Handler) entries(c *gin.Context) ([]report.Entry, error) {
	run, err := h.run(c)
	if err != nil {
		return nil, err
	}
	records, err := h.Store.Records(c.Request.Context(), run.ID)
	if err != nil {
		return nil, err
	}
	out := make([]report.Entry, len(records))
	for i, r := range records {
		out[i] = r.Entry()
	}
	return out, nil
}

func (h *Handler) topKeywords(c *gin.Context) {
	entries, err := h.entries(c)
	if err != nil {
		h.fail(c, "top-keywords", err)
		return
	}
	kw, err := report.LabeledKeywords(entries, topKeywordCount)
	if err != nil {
		h.fail(c, "top-keywords", err)
		return
	}
	c.JSON(http.StatusOK, kw)
}

type recentReview struct {
	ID        int             `json:"id"`
	ProdukID  string          `json:"produkId"`
	Text      string          `json:"text"`
	Customer  string          `json:"customer"`
	Sentiment sentiment.Label `json:"sentiment"`
	Rating    *int            `json:"rating"`
}

func (h *Handler) recent(c *gin.Context) {
	run, err := h.run(c)
	if err != nil {
		h.fail(c, "recent", err)
		return
	}
	records, err := h.Store.RandomReviews(c.Request.Context(), run.ID, recentCount)
	if err != nil {
		h.fail(c, "recent", err)
		return
	}
	out := make([]recentReview, len(records))
	for i, r := range records {
		out[i] = recentReview{
			ID:        r.Ordinal,
			ProdukID:  r.ProductID,
			Text:      r.Text,
			Customer:  r.User,
			Sentiment: r.Label,
			Rating:    r.Rating,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) productCount(c *gin.Context) {
	run, err := h.run(c)
	if err != nil {
		h.fail(c, "produk-count", err)
		return
	}
	n, err := h.Store.ProductCount(c.Request.Context(), run.ID)
	if err != nil {
		h.fail(c, "produk-count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) analysis(c *gin.Context) {
	entries, err := h.entries(c)
	if err != nil {
		h.fail(c, "analysis", err)
		return
	}
	dist := report.Distribution(entries)
	issues := report.TopIssues(entries, topIssueCount)
	c.JSON(http.StatusOK, gin.H{
		"sentimentDistribution": gin.H{
			"positive": report.Share(dist, sentiment.LabelPositive),
			"neutral":  report.Share(dist, sentiment.LabelNeutral),
			"negative": report.Share(dist, sentiment.LabelNegative),
		},
		"topIssues":      issues,
		"recommendation": report.Recommendation(dist, issues),
	})
}
