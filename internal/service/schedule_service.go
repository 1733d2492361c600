package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/dto"
	"github.com/acadplan/timetable-api/internal/engine"
	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

type courseRepository interface {
	ListByLevel(ctx context.Context, level int) ([]models.Course, error)
}

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
}

type ruleRepository interface {
	List(ctx context.Context) ([]models.Rule, error)
}

type demandRepository interface {
	MapByLevel(ctx context.Context, level int) (map[string]int, error)
}

type versionRepository interface {
	LatestForLevel(ctx context.Context, level int) (*models.ScheduleVersion, error)
	LatestPerLevel(ctx context.Context) ([]models.ScheduleVersion, error)
	ListByLevel(ctx context.Context, level int) ([]models.ScheduleVersion, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleVersion, error)
	UpdateInPlace(ctx context.Context, version *models.ScheduleVersion) error
	Delete(ctx context.Context, id string) error
}

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type groupBuilder interface {
	BuildGroups(ctx context.Context, level int) ([]models.Group, error)
}

type scheduleCache interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationMetrics interface {
	ObserveGeneration(level int, duration time.Duration, conflicts int, failed bool)
}

// ScheduleService loads collaborator data, drives the generation engine and
// owns the version lifecycle.
type ScheduleService struct {
	courses      courseRepository
	rooms        roomRepository
	rules        ruleRepository
	demand       demandRepository
	versions     versionRepository
	audits       auditRepository
	groups       groupBuilder
	orchestrator *engine.Orchestrator
	detector     engine.ConflictDetector
	cache        scheduleCache
	metrics      generationMetrics
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(
	courses courseRepository,
	rooms roomRepository,
	rules ruleRepository,
	demand demandRepository,
	versions versionRepository,
	audits auditRepository,
	groups groupBuilder,
	orchestrator *engine.Orchestrator,
	cache scheduleCache,
	metrics generationMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		courses:      courses,
		rooms:        rooms,
		rules:        rules,
		demand:       demand,
		versions:     versions,
		audits:       audits,
		groups:       groups,
		orchestrator: orchestrator,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// Generate runs the full pipeline for one level and returns the persisted
// version together with run diagnostics.
func (s *ScheduleService) Generate(ctx context.Context, req dto.GenerateScheduleRequest, userID *string) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}

	started := time.Now()
	result, err := s.generate(ctx, req.Level)
	if s.metrics != nil {
		conflicts := 0
		if result != nil {
			conflicts = len(result.Conflicts)
		}
		s.metrics.ObserveGeneration(req.Level, time.Since(started), conflicts, err != nil)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, req.Level)
	s.recordAudit(ctx, models.AuditLog{
		UserID:          userID,
		Action:          models.AuditActionGenerate,
		Level:           req.Level,
		ChangesSummary:  fmt.Sprintf("generated version %s with %d sections", result.Version.ID, result.Version.TotalSections),
		ConflictsBefore: result.ConflictsBefore,
		ConflictsAfter:  len(result.Conflicts),
	})

	return &dto.GenerateScheduleResponse{
		Version:         result.Version,
		Gaps:            dto.GapViews(result.Gaps),
		Conflicts:       result.Conflicts,
		ConflictsBefore: result.ConflictsBefore,
		OracleUsed:      result.OracleUsed,
		State:           string(result.State),
	}, nil
}

func (s *ScheduleService) generate(ctx context.Context, level int) (*engine.RunResult, error) {
	courses, err := s.courses.ListByLevel(ctx, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}
	groups, err := s.groups.BuildGroups(ctx, level)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room inventory")
	}
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling rules")
	}
	demand, err := s.demand.MapByLevel(ctx, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course demand")
	}
	others, err := s.versions.LatestPerLevel(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing schedules")
	}

	return s.orchestrator.GenerateLevel(ctx, engine.GenerateInput{
		Level:         level,
		Courses:       courses,
		Groups:        groups,
		Rooms:         rooms,
		Rules:         rules,
		Demand:        demand,
		OtherVersions: others,
	})
}

// Latest returns the authoritative version for a level.
func (s *ScheduleService) Latest(ctx context.Context, level int) (*models.ScheduleVersion, error) {
	version, err := s.versions.LatestForLevel(ctx, level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule generated for this level yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return version, nil
}

// Versions lists every stored version for a level, newest first.
func (s *ScheduleService) Versions(ctx context.Context, level int) ([]dto.ScheduleVersionSummary, error) {
	versions, err := s.versions.ListByLevel(ctx, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule versions")
	}
	summaries := make([]dto.ScheduleVersionSummary, 0, len(versions))
	for _, version := range versions {
		summaries = append(summaries, dto.SummaryOf(version))
	}
	return summaries, nil
}

// VersionByID loads one stored version.
func (s *ScheduleService) VersionByID(ctx context.Context, id string) (*models.ScheduleVersion, error) {
	version, err := s.versions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule version")
	}
	return version, nil
}

// Update replaces a version's group schedules by hand, re-runs conflict
// detection against the other levels and records the conflict delta.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.UpdateScheduleRequest, userID *string) (*models.ScheduleVersion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule update")
	}

	version, err := s.VersionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := version.Conflicts

	version.Groups = req.Groups
	version.TotalSections = 0
	for _, schedule := range req.Groups {
		version.TotalSections += len(schedule.Sections)
	}

	// The stored efficiency was derived from the pre-edit section count, so
	// it is recomputed against the current catalog here.
	courses, err := s.courses.ListByLevel(ctx, version.Level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}
	demand, err := s.demand.MapByLevel(ctx, version.Level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course demand")
	}
	version.Efficiency = 0
	if required := len(engine.EligibleCourses(courses, demand)) * len(version.Groups); required > 0 {
		version.Efficiency = version.TotalSections * 100 / required
	}

	others, err := s.versions.LatestPerLevel(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing schedules")
	}
	version.Conflicts = len(s.detector.Detect(*version, others))

	if err := s.versions.UpdateInPlace(ctx, version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, err.Error())
	}

	s.invalidateCaches(ctx, version.Level)
	s.recordAudit(ctx, models.AuditLog{
		UserID:          userID,
		Action:          models.AuditActionUpdate,
		Level:           version.Level,
		Prompt:          req.Prompt,
		ChangesSummary:  fmt.Sprintf("manually edited version %s", version.ID),
		ConflictsBefore: before,
		ConflictsAfter:  version.Conflicts,
	})
	return version, nil
}

// Delete removes a stored version.
func (s *ScheduleService) Delete(ctx context.Context, id string, userID *string) error {
	version, err := s.VersionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.versions.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule version not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, err.Error())
	}

	s.invalidateCaches(ctx, version.Level)
	s.recordAudit(ctx, models.AuditLog{
		UserID:          userID,
		Action:          models.AuditActionDelete,
		Level:           version.Level,
		ChangesSummary:  fmt.Sprintf("deleted version %s", version.ID),
		ConflictsBefore: version.Conflicts,
		ConflictsAfter:  version.Conflicts,
	})
	return nil
}

// RegenerateLevels runs generation for each level in ascending order, so
// lower levels claim their slots first and later levels schedule around
// them. Used by the background regeneration job.
func (s *ScheduleService) RegenerateLevels(ctx context.Context, levels []int, userID *string) error {
	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return err
		}
		started := time.Now()
		result, err := s.generate(ctx, level)
		if s.metrics != nil {
			conflicts := 0
			if result != nil {
				conflicts = len(result.Conflicts)
			}
			s.metrics.ObserveGeneration(level, time.Since(started), conflicts, err != nil)
		}
		if err != nil {
			s.logger.Error("regeneration failed for level", zap.Int("level", level), zap.Error(err))
			return err
		}
		s.invalidateCaches(ctx, level)
		s.recordAudit(ctx, models.AuditLog{
			UserID:          userID,
			Action:          models.AuditActionRegen,
			Level:           level,
			ChangesSummary:  fmt.Sprintf("regenerated version %s", result.Version.ID),
			ConflictsBefore: result.ConflictsBefore,
			ConflictsAfter:  len(result.Conflicts),
		})
	}
	return nil
}

// ActiveLevels reports which levels currently have a schedule, in ascending
// order. Regeneration targets exactly these.
func (s *ScheduleService) ActiveLevels(ctx context.Context) ([]int, error) {
	versions, err := s.versions.LatestPerLevel(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing schedules")
	}
	levels := make([]int, 0, len(versions))
	for _, version := range versions {
		levels = append(levels, version.Level)
	}
	return levels, nil
}

func (s *ScheduleService) invalidateCaches(ctx context.Context, level int) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{fmt.Sprintf("schedule:level:%d:*", level), "conflicts:*"} {
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

func (s *ScheduleService) recordAudit(ctx context.Context, entry models.AuditLog) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Create(ctx, &entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("action", entry.Action), zap.Error(err))
	}
}
