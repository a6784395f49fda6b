package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusgate/allocation-service/internal/services"
	"github.com/campusgate/allocation-service/internal/utils"
)

type ThresholdHandler struct {
	BaseHandler
	thresholdService services.ThresholdService
}

func NewThresholdHandler(thresholdService services.ThresholdService, logger utils.Logger) *ThresholdHandler {
	return &ThresholdHandler{
		BaseHandler:      NewBaseHandler(logger),
		thresholdService: thresholdService,
	}
}

// GetThresholds returns the current attendance requirement config
// @Summary Get thresholds
// @Tags thresholds
// @Produce json
// @Success 200 {object} models.ThresholdConfig
// @Router /thresholds [get]
func (h *ThresholdHandler) GetThresholds(c *gin.Context) {
	cfg, err := h.thresholdService.Get(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// UpdateThresholds updates the default requirement and per-combination
// overrides
// @Summary Update thresholds
// @Tags thresholds
// @Accept json
// @Produce json
// @Param thresholds body services.UpdateThresholdRequest true "Threshold changes"
// @Success 200 {object} models.ThresholdConfig
// @Failure 400 {object} ErrorResponse
// @Router /thresholds [put]
func (h *ThresholdHandler) UpdateThresholds(c *gin.Context) {
	h.LogRequest(c, "Updating thresholds")

	var req services.UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	cfg, err := h.thresholdService.Update(c.Request.Context(), &req, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}
