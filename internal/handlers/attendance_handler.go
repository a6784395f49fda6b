package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/services"
	"github.com/campusgate/allocation-service/internal/utils"
	"github.com/campusgate/allocation-service/internal/validator"
)

type AttendanceHandler struct {
	BaseHandler
	attendanceService services.AttendanceService
	reportService     services.ReportService
	validator         *validator.Validator
}

func NewAttendanceHandler(
	attendanceService services.AttendanceService,
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler:       NewBaseHandler(logger),
		attendanceService: attendanceService,
		reportService:     reportService,
		validator:         validator,
	}
}

// RecordSession stores one held session
// @Summary Record attendance session
// @Tags attendance
// @Accept json
// @Produce json
// @Param session body services.RecordSessionRequest true "Session data"
// @Success 201 {object} models.AttendanceRecord
// @Failure 400 {object} ErrorResponse
// @Router /attendance [post]
func (h *AttendanceHandler) RecordSession(c *gin.Context) {
	var req services.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.RecordSession(c.Request.Context(), &req, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetMassBunks lists sessions of a course where every participant was absent
// @Summary List mass bunks
// @Tags attendance
// @Produce json
// @Param course_code path string true "Course code"
// @Success 200 {object} SuccessResponse{data=[]services.MassBunkEvent}
// @Router /courses/{course_code}/mass-bunks [get]
func (h *AttendanceHandler) GetMassBunks(c *gin.Context) {
	courseCode := c.Param("course_code")
	if models.NormalizeCourseCode(courseCode) == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid course code", nil)
		return
	}

	events, err := h.attendanceService.MassBunks(c.Request.Context(), courseCode)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: events})
}

// ExportRegister streams the course attendance register as a workbook
// @Summary Export attendance register
// @Tags attendance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param course_code path string true "Course code"
// @Success 200 {file} binary
// @Router /courses/{course_code}/register [get]
func (h *AttendanceHandler) ExportRegister(c *gin.Context) {
	h.LogRequest(c, "Exporting attendance register")

	courseCode := c.Param("course_code")
	if models.NormalizeCourseCode(courseCode) == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid course code", nil)
		return
	}

	data, err := h.reportService.ExportAttendanceRegister(c.Request.Context(), courseCode)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", models.NormalizeCourseCode(courseCode))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
