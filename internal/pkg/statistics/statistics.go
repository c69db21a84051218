package statistics

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/app/repository"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/billing"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/cache"
)

const (
	CacheKeySummary = "statistics:admin:summary"
	CacheExpiration = time.Minute
)

// Summary is the admin dashboard overview.
type Summary struct {
	TotalSubmissions int64            `json:"total_submissions"`
	ByStatus         map[string]int64 `json:"by_status"`
	ByPaymentStatus  map[string]int64 `json:"by_payment_status"`
	ByReportType     map[string]int64 `json:"by_report_type"`
	PaidBundles      int64            `json:"paid_bundles"`
	Revenue          decimal.Decimal  `json:"revenue"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// Store caches summaries between requests.
type Store interface {
	GetJSON(ctx context.Context, key string, v interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

type redisStore struct{}

func (redisStore) GetJSON(ctx context.Context, key string, v interface{}) error {
	return cache.GetJSON(ctx, key, v)
}

func (redisStore) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	return cache.SetJSON(ctx, key, v, ttl)
}

// RedisStore keeps summaries in the shared cache client.
func RedisStore() Store { return redisStore{} }

type Service struct {
	submissions repository.SubmissionRepository
	bundles     repository.BundleRepository
	store       Store
	now         func() time.Time
}

// NewService creates a statistics service. store may be nil to always
// compute fresh numbers.
func NewService(repos *repository.Repositories, store Store) *Service {
	return &Service{
		submissions: repos.Submission,
		bundles:     repos.Bundle,
		store:       store,
		now:         time.Now,
	}
}

// Summary returns the cached summary when present, otherwise computes and
// caches a fresh one. Cache errors never fail the request.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.store != nil {
		var cached Summary
		err := s.store.GetJSON(ctx, CacheKeySummary, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warnf("[Statistics] Cache read failed: %v", err)
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load statistics", err)
	}

	if s.store != nil {
		if err := s.store.SetJSON(ctx, CacheKeySummary, summary, CacheExpiration); err != nil {
			log.Warnf("[Statistics] Cache write failed: %v", err)
		}
	}
	return summary, nil
}

func (s *Service) compute(ctx context.Context) (*Summary, error) {
	byStatus, err := s.submissions.CountBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	byPayment, err := s.submissions.CountBy(ctx, "payment_status")
	if err != nil {
		return nil, err
	}
	byType, err := s.submissions.CountBy(ctx, "report_type")
	if err != nil {
		return nil, err
	}
	paidBundles, err := s.bundles.CountPaid(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &Summary{
		TotalSubmissions: total,
		ByStatus:         byStatus,
		ByPaymentStatus:  byPayment,
		ByReportType:     byType,
		PaidBundles:      paidBundles,
		Revenue:          billing.Revenue(byPayment[models.PaymentStatusPaidSingle], paidBundles),
		GeneratedAt:      s.now().UTC(),
	}, nil
}
