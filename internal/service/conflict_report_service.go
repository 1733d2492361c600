package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/dto"
	"github.com/acadplan/timetable-api/internal/engine"
	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

type latestVersionReader interface {
	LatestPerLevel(ctx context.Context) ([]models.ScheduleVersion, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const conflictReportCacheKey = "conflicts:report"

// ConflictReportService recomputes the cross-level conflict picture from
// the latest version of every level. Conflicts are derived data; the report
// is never read from the version rows themselves.
type ConflictReportService struct {
	versions latestVersionReader
	detector engine.ConflictDetector
	cache    reportCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewConflictReportService instantiates ConflictReportService.
func NewConflictReportService(versions latestVersionReader, cache reportCache, ttl time.Duration, logger *zap.Logger) *ConflictReportService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictReportService{versions: versions, cache: cache, ttl: ttl, logger: logger}
}

// Report builds the aggregated conflict report, serving a cached copy when
// one is fresh.
func (s *ConflictReportService) Report(ctx context.Context) (*dto.ConflictReport, error) {
	if s.cache != nil {
		var cached dto.ConflictReport
		err := s.cache.Get(ctx, conflictReportCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("conflict report cache read failed", zap.Error(err))
		}
	}

	versions, err := s.versions.LatestPerLevel(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules for conflict report")
	}

	report := &dto.ConflictReport{
		BySeverity:  make(map[string]int),
		ByLevel:     make(map[int]int),
		GeneratedAt: time.Now().UTC(),
	}
	for _, version := range versions {
		report.CheckedLevels = append(report.CheckedLevels, version.Level)
		conflicts := s.detector.Detect(version, versions)
		for _, conflict := range conflicts {
			// Inter-level conflicts surface once per pair, attributed to
			// the higher level so the pair is not double-counted.
			if conflict.Type == models.ConflictTypeInterLevel && conflict.OtherLevel > conflict.Level {
				continue
			}
			report.Conflicts = append(report.Conflicts, conflict)
			report.BySeverity[string(conflict.Severity)]++
			report.ByLevel[conflict.Level]++
		}
	}
	report.TotalConflicts = len(report.Conflicts)

	if s.cache != nil {
		if err := s.cache.Set(ctx, conflictReportCacheKey, report, s.ttl); err != nil {
			s.logger.Warn("conflict report cache write failed", zap.Error(err))
		}
	}
	return report, nil
}
