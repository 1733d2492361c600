package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

// VersionStore is the durable-write boundary for generated schedules.
type VersionStore interface {
	Create(ctx context.Context, version *models.ScheduleVersion) error
}

// OrchestratorConfig bounds the oracle call and the resolve loop.
type OrchestratorConfig struct {
	OracleTimeout    time.Duration
	MaxResolveRounds int
}

// GenerateInput carries everything one level's generation run needs. The
// collaborator data (catalog, roster, rooms, rules, demand, other levels'
// latest versions) is loaded by the caller.
type GenerateInput struct {
	Level         int
	Courses       []models.Course
	Groups        []models.Group
	Rooms         []models.Room
	Rules         []models.Rule
	Demand        map[string]int
	OtherVersions []models.ScheduleVersion
}

// RunResult reports the outcome of a generation run, including partial
// successes: residual conflicts and placement gaps are surfaced, not hidden.
type RunResult struct {
	Version         *models.ScheduleVersion
	Gaps            []PlacementGap
	Conflicts       []models.Conflict
	ConflictsBefore int
	OracleUsed      bool
	State           RunState
}

// Orchestrator drives one level's generation end to end:
// constraints -> oracle -> placement -> detection -> resolution -> persistence.
type Orchestrator struct {
	runMu    sync.Mutex
	tracker  *RoomOccupancyTracker
	builder  *ConstraintBuilder
	oracle   Oracle
	placer   *SectionPlacer
	resolver *ConflictResolver
	detector ConflictDetector
	store    VersionStore
	logger   *zap.Logger
	cfg      OrchestratorConfig
}

// NewOrchestrator wires the engine components. A nil oracle skips straight
// to deterministic placement.
func NewOrchestrator(
	tracker *RoomOccupancyTracker,
	builder *ConstraintBuilder,
	oracle Oracle,
	placer *SectionPlacer,
	resolver *ConflictResolver,
	store VersionStore,
	logger *zap.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = 15 * time.Second
	}
	if cfg.MaxResolveRounds <= 0 {
		cfg.MaxResolveRounds = 3
	}
	return &Orchestrator{
		tracker:  tracker,
		builder:  builder,
		oracle:   oracle,
		placer:   placer,
		resolver: resolver,
		detector: ConflictDetector{},
		store:    store,
		logger:   logger,
		cfg:      cfg,
	}
}

// GenerateLevel runs the full pipeline for one level and persists the result.
// Oracle failures fall back to deterministic placement; persistence failures
// are fatal and propagated verbatim. Runs are serialized: each one resets and
// reseeds the shared tracker, so a second run must wait until the first has
// persisted.
func (o *Orchestrator) GenerateLevel(ctx context.Context, in GenerateInput) (*RunResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if len(in.Courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses found for this level")
	}
	if len(in.Groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no student groups found for this level")
	}
	if len(in.Rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms available")
	}

	result := &RunResult{State: StateIdle}

	o.tracker.Reset()
	external := collectSections(in.OtherVersions, in.Level)
	o.tracker.SeedSections(external)

	result.State = StateBuildingConstraints
	wanted := EligibleCourses(in.Courses, in.Demand)
	constraints := o.builder.Build(in.Level, in.Courses, in.Groups, in.Rooms, external, in.Rules, in.Demand)

	result.State = StateAwaitingOracle
	proposals := o.consultOracle(ctx, constraints, in.Level, result)

	result.State = StatePlacing
	version := &models.ScheduleVersion{
		Level:       in.Level,
		Groups:      make(map[string]models.GroupSchedule, len(in.Groups)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, group := range in.Groups {
		sections, gaps := o.placer.PlaceGroup(group, wanted, in.Rooms, proposals)
		version.Groups[group.Name] = models.GroupSchedule{
			StudentCount: group.StudentCount,
			Sections:     sections,
		}
		version.TotalSections += len(sections)
		result.Gaps = append(result.Gaps, gaps...)
	}

	required := len(wanted) * len(in.Groups)
	if required > 0 {
		version.Efficiency = version.TotalSections * 100 / required
	}

	result.State = StateDetectingConflicts
	conflicts := o.detector.Detect(*version, in.OtherVersions)
	result.ConflictsBefore = len(conflicts)

	for round := 0; len(conflicts) > 0 && round < o.cfg.MaxResolveRounds; round++ {
		if err := ctx.Err(); err != nil {
			o.tracker.Reset()
			result.State = StateFailed
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation cancelled")
		}
		result.State = StateResolving
		conflicts = o.resolver.Resolve(version, in.OtherVersions, in.Courses, in.Rooms)
		result.State = StateDetectingConflicts
	}

	// Partial success is acceptable: residual conflicts stay visible on the
	// persisted artifact and flag the schedule for manual review.
	version.Conflicts = len(conflicts)
	result.Conflicts = conflicts

	result.State = StatePersisting
	if err := o.store.Create(ctx, version); err != nil {
		result.State = StateFailed
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, err.Error())
	}

	result.Version = version
	result.State = StateDone
	o.logger.Info("schedule generated",
		zap.Int("level", in.Level),
		zap.Int("sections", version.TotalSections),
		zap.Int("conflicts", version.Conflicts),
		zap.Int("efficiency", version.Efficiency),
		zap.Int("gaps", len(result.Gaps)),
		zap.Bool("oracle_used", result.OracleUsed))
	return result, nil
}

// consultOracle calls the recommendation oracle under a bounded timeout.
// Failures of any kind are treated as an empty response; there is no retry.
func (o *Orchestrator) consultOracle(ctx context.Context, constraints Constraints, level int, result *RunResult) []Proposal {
	if o.oracle == nil {
		return nil
	}
	oracleCtx, cancel := context.WithTimeout(ctx, o.cfg.OracleTimeout)
	defer cancel()

	proposals, err := o.oracle.Recommend(oracleCtx, constraints, level)
	if err != nil {
		o.logger.Warn("oracle unavailable, falling back to deterministic placement",
			zap.Int("level", level), zap.Error(err))
		return nil
	}
	valid := proposals[:0]
	for _, proposal := range proposals {
		if proposal.Complete() {
			valid = append(valid, proposal)
		}
	}
	if len(valid) > 0 {
		result.OracleUsed = true
	}
	return valid
}

// collectSections flattens the latest versions of every level except the
// candidate into one section list for occupancy seeding.
func collectSections(versions []models.ScheduleVersion, excludeLevel int) []models.Section {
	var sections []models.Section
	for _, version := range versions {
		if version.Level == excludeLevel {
			continue
		}
		for _, schedule := range version.Groups {
			sections = append(sections, schedule.Sections...)
		}
	}
	return sections
}
