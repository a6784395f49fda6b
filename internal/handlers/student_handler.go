package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusgate/allocation-service/internal/services"
	"github.com/campusgate/allocation-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	allocationService services.AllocationService
	attendanceService services.AttendanceService
}

func NewStudentHandler(
	allocationService services.AllocationService,
	attendanceService services.AttendanceService,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:       NewBaseHandler(logger),
		allocationService: allocationService,
		attendanceService: attendanceService,
	}
}

// GetAttendanceSummary returns the per-course attendance dashboard for the
// current student
// @Summary Get attendance summary
// @Tags students
// @Produce json
// @Success 200 {object} services.AttendanceSummaryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/me/attendance [get]
func (h *StudentHandler) GetAttendanceSummary(c *gin.Context) {
	h.LogRequest(c, "Getting attendance summary")

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	summary, err := h.attendanceService.Summary(c.Request.Context(), user.Roll)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AccessAssignment evaluates eligibility and returns the student's question
// set, materializing it on first eligible access
// @Summary Access an assignment
// @Tags students
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} services.EvaluationResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Assignment not started"
// @Router /students/me/assignments/{id} [get]
func (h *StudentHandler) AccessAssignment(c *gin.Context) {
	h.LogRequest(c, "Accessing assignment")

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.allocationService.EvaluateAndAllocate(c.Request.Context(), user.Roll, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAllocation returns the stored allocation row, without evaluating
// @Summary Get stored allocation
// @Tags students
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} models.StudentAssignment
// @Failure 404 {object} ErrorResponse
// @Router /students/me/assignments/{id}/allocation [get]
func (h *StudentHandler) GetAllocation(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	allocation, err := h.allocationService.GetAllocation(c.Request.Context(), id, user.Roll)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

// ListAllocations returns every stored allocation of the current student
// @Summary List my allocations
// @Tags students
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.StudentAssignment}
// @Router /students/me/allocations [get]
func (h *StudentHandler) ListAllocations(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	allocations, err := h.allocationService.ListAllocations(c.Request.Context(), user.Roll)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: allocations})
}
