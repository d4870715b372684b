package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// SeriesCache caches computed report series. A nil cache disables caching.
type SeriesCache interface {
	Get(ctx context.Context, key string) ([]int, bool)
	Set(ctx context.Context, key string, series []int, ttl time.Duration)
}

// ReportService produces time-bucketed dashboard counts. Read-only.
type ReportService struct {
	tickets  repository.TicketRepository
	cache    SeriesCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, cache SeriesCache) *ReportService {
	return &ReportService{
		tickets:  tickets,
		cache:    cache,
		cacheTTL: time.Minute,
		now:      time.Now,
	}
}

// CountByDay returns one count per calendar day over a trailing window,
// oldest day first. Days without matches report 0; the result length always
// equals windowDays. Open tickets bucket by creation day, resolved tickets by
// their last update.
func (s *ReportService) CountByDay(ctx context.Context, projectID *int64, status domain.TicketStatus, windowDays int) ([]int, error) {
	if windowDays <= 0 {
		return nil, apperrors.NewValidationError("window must be at least one day", map[string]any{"days": windowDays})
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": string(status)})
	}

	key := cacheKey(projectID, status, windowDays)
	if s.cache != nil {
		if series, ok := s.cache.Get(ctx, key); ok {
			return series, nil
		}
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(windowDays - 1))

	counts, err := s.tickets.CountPerDay(ctx, repository.DayCountFilter{
		ProjectID:   projectID,
		Statuses:    []domain.TicketStatus{status},
		Since:       start,
		ByUpdatedAt: status == domain.TicketStatusResolved,
	})
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	series := make([]int, windowDays)
	for i := range series {
		series[i] = counts[start.AddDate(0, 0, i)]
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, series, s.cacheTTL)
	}
	return series, nil
}

func cacheKey(projectID *int64, status domain.TicketStatus, windowDays int) string {
	project := "all"
	if projectID != nil {
		project = fmt.Sprintf("%d", *projectID)
	}
	return fmt.Sprintf("reports:per-day:%s:%s:%d", project, strings.ReplaceAll(string(status), " ", "_"), windowDays)
}
