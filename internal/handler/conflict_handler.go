package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadplan/timetable-api/internal/service"
	"github.com/acadplan/timetable-api/pkg/response"
)

// ConflictHandler exposes the cross-level conflict report.
type ConflictHandler struct {
	service *service.ConflictReportService
}

// NewConflictHandler constructs handler.
func NewConflictHandler(svc *service.ConflictReportService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// Report godoc
// @Summary Conflict report across every level's current schedule
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts [get]
func (h *ConflictHandler) Report(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
