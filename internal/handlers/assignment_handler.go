package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/services"
	"github.com/campusgate/allocation-service/internal/utils"
	"github.com/campusgate/allocation-service/internal/validator"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	validator         *validator.Validator
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		validator:         validator,
	}
}

// CreateAssignment creates a new assignment
// @Summary Create assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body services.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} services.AssignmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment retrieves an assignment by ID
// @Summary Get assignment
// @Tags assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} services.AssignmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignment updates an assignment
// @Summary Update assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param assignment body services.UpdateAssignmentRequest true "Fields to update"
// @Success 200 {object} services.AssignmentResponse
// @Failure 403 {object} ErrorResponse
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), id, &req, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment deletes an assignment
// @Summary Delete assignment
// @Tags assignments
// @Param id path int true "Assignment ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAssignments lists assignments with filters and pagination
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Param type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param course_code query string false "Filter by course"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.AssignmentListResponse
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	h.LogRequest(c, "Listing assignments")

	filters := services.AssignmentFilters{}

	if t := c.Query("type"); t != "" {
		assignmentType := models.AssignmentType(t)
		filters.Type = &assignmentType
	}
	if s := c.Query("status"); s != "" {
		status := models.AssignmentStatus(s)
		filters.Status = &status
	}
	if course := c.Query("course_code"); course != "" {
		filters.CourseCode = &course
	}

	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	response, err := h.assignmentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AddQuestions appends questions to an assignment's pool
// @Summary Add questions
// @Tags assignments
// @Accept json
// @Param id path int true "Assignment ID"
// @Param questions body []services.CreateQuestionRequest true "Questions"
// @Success 201 {object} SuccessResponse
// @Router /assignments/{id}/questions [post]
func (h *AssignmentHandler) AddQuestions(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var reqs []services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if len(reqs) == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "No questions provided", nil)
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.assignmentService.AddQuestions(c.Request.Context(), id, reqs, user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "Questions added"})
}

// RemoveQuestion removes one question from an assignment's pool
// @Summary Remove question
// @Tags assignments
// @Param id path int true "Assignment ID"
// @Param question_id path int true "Question ID"
// @Success 204
// @Router /assignments/{id}/questions/{question_id} [delete]
func (h *AssignmentHandler) RemoveQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := h.parseIDParam(c, "question_id")
	if !ok {
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.assignmentService.RemoveQuestion(c.Request.Context(), id, questionID, user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
