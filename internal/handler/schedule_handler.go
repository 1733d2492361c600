package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acadplan/timetable-api/internal/dto"
	"github.com/acadplan/timetable-api/internal/models"
	"github.com/acadplan/timetable-api/internal/service"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
	"github.com/acadplan/timetable-api/pkg/jobs"
	"github.com/acadplan/timetable-api/pkg/response"
)

type scheduleService interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest, userID *string) (*dto.GenerateScheduleResponse, error)
	Latest(ctx context.Context, level int) (*models.ScheduleVersion, error)
	Versions(ctx context.Context, level int) ([]dto.ScheduleVersionSummary, error)
	VersionByID(ctx context.Context, id string) (*models.ScheduleVersion, error)
	Update(ctx context.Context, id string, req dto.UpdateScheduleRequest, userID *string) (*models.ScheduleVersion, error)
	Delete(ctx context.Context, id string, userID *string) error
	ActiveLevels(ctx context.Context) ([]int, error)
}

// ScheduleHandler manages schedule generation and version endpoints.
type ScheduleHandler struct {
	service scheduleService
	regen   *jobs.Queue
}

// NewScheduleHandler constructs handler. The queue may be nil when the
// background regeneration worker is disabled.
func NewScheduleHandler(svc scheduleService, regen *jobs.Queue) *ScheduleHandler {
	return &ScheduleHandler{service: svc, regen: regen}
}

func levelParam(c *gin.Context) (int, error) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "level must be a positive integer")
	}
	return level, nil
}

// Generate godoc
// @Summary Generate a schedule for one level
// @Tags Schedules
// @Produce json
// @Param level path int true "Academic level"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /schedules/generate/{level} [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Generate(c.Request.Context(), dto.GenerateScheduleRequest{Level: level}, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Latest godoc
// @Summary Get the current schedule for a level
// @Tags Schedules
// @Produce json
// @Param level path int true "Academic level"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{level} [get]
func (h *ScheduleHandler) Latest(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	version, err := h.service.Latest(c.Request.Context(), level)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// Versions godoc
// @Summary List stored schedule versions for a level
// @Tags Schedules
// @Produce json
// @Param level path int true "Academic level"
// @Success 200 {object} response.Envelope
// @Router /schedules/{level}/versions [get]
func (h *ScheduleHandler) Versions(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	versions, err := h.service.Versions(c.Request.Context(), level)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// VersionByID godoc
// @Summary Get one stored schedule version
// @Tags Schedules
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/versions/{id} [get]
func (h *ScheduleHandler) VersionByID(c *gin.Context) {
	version, err := h.service.VersionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// Update godoc
// @Summary Manually edit a stored schedule version
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Version ID"
// @Param payload body dto.UpdateScheduleRequest true "Replacement group schedules"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/versions/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	version, err := h.service.Update(c.Request.Context(), c.Param("id"), req, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// Delete godoc
// @Summary Delete a stored schedule version
// @Tags Schedules
// @Produce json
// @Param id path string true "Version ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedules/versions/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userIDFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Regenerate godoc
// @Summary Regenerate every level's schedule in the background
// @Tags Schedules
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /schedules/regenerate [post]
func (h *ScheduleHandler) Regenerate(c *gin.Context) {
	if h.regen == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "background regeneration disabled"))
		return
	}
	levels, err := h.service.ActiveLevels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(levels) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "no schedules to regenerate"))
		return
	}

	payload := service.RegenerateJobPayload{Levels: levels, UserID: userIDFromContext(c)}
	if err := h.regen.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("regen-%d-levels", len(levels)),
		Type:    service.JobTypeRegenerate,
		Payload: payload,
	}); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue regeneration"))
		return
	}
	response.JSON(c, http.StatusAccepted, dto.RegenerateResponse{Accepted: true, Levels: levels}, nil)
}

// ExportCSV godoc
// @Summary Export the level's current schedule as CSV
// @Tags Schedules
// @Produce text/csv
// @Param level path int true "Academic level"
// @Success 200 {string} string "CSV document"
// @Router /schedules/{level}/export/csv [get]
func (h *ScheduleHandler) ExportCSV(exporter *service.ExportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		level, err := levelParam(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		payload, err := exporter.CSV(c.Request.Context(), level)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="level-%d-schedule.csv"`, level))
		c.Data(http.StatusOK, "text/csv", payload)
	}
}

// ExportPDF godoc
// @Summary Export the level's current schedule as PDF
// @Tags Schedules
// @Produce application/pdf
// @Param level path int true "Academic level"
// @Success 200 {string} string "PDF document"
// @Router /schedules/{level}/export/pdf [get]
func (h *ScheduleHandler) ExportPDF(exporter *service.ExportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		level, err := levelParam(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		payload, err := exporter.PDF(c.Request.Context(), level)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="level-%d-schedule.pdf"`, level))
		c.Data(http.StatusOK, "application/pdf", payload)
	}
}
