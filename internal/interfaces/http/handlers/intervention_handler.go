package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/aewis/internal/application/dto"
	"github.com/turtacn/aewis/internal/application/service"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// InterventionHandler 干预台账 HTTP 处理器
type InterventionHandler struct {
	interventionService service.InterventionAppService
	logger              logger.Logger
}

// NewInterventionHandler 创建干预处理器
func NewInterventionHandler(interventionService service.InterventionAppService, log logger.Logger) *InterventionHandler {
	return &InterventionHandler{
		interventionService: interventionService,
		logger:              log.WithComponent("InterventionHandler"),
	}
}

// RecordIntervention 记录教师干预
// POST /api/v1/interventions
func (h *InterventionHandler) RecordIntervention(c *gin.Context) {
	var req dto.InterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errors.ErrInvalidRequest(err.Error()), "record_intervention")
		return
	}

	resp, err := h.interventionService.RecordIntervention(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "record_intervention")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListInterventions 列出学院干预台账，最新在前
// GET /api/v1/interventions/:college_id?limit=
func (h *InterventionHandler) ListInterventions(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, h.logger, errors.ErrInvalidRequest("limit must be a non-negative integer"), "list_interventions")
			return
		}
		limit = n
	}

	resp, err := h.interventionService.ListInterventions(c.Request.Context(), c.Param("college_id"), limit)
	if err != nil {
		respondError(c, h.logger, err, "list_interventions")
		return
	}
	c.JSON(http.StatusOK, resp)
}
