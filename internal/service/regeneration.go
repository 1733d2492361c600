package service

import (
	"context"
	"fmt"

	"github.com/acadplan/timetable-api/pkg/jobs"
)

// JobTypeRegenerate tags full-regeneration jobs on the background queue.
const JobTypeRegenerate = "schedule.regenerate"

// RegenerateJobPayload carries the levels to rebuild and the requesting user.
type RegenerateJobPayload struct {
	Levels []int
	UserID *string
}

// RegenerationHandler adapts ScheduleService.RegenerateLevels to the job
// queue. The queue runs a single worker, which serialises regeneration runs
// against the shared occupancy tracker.
func RegenerationHandler(svc *ScheduleService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(RegenerateJobPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return svc.RegenerateLevels(ctx, payload.Levels, payload.UserID)
	}
}
