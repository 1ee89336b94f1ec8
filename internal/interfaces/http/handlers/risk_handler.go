package handlers

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/aewis/internal/application/dto"
	"github.com/turtacn/aewis/internal/application/service"
	"github.com/turtacn/aewis/internal/infrastructure/ingest"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

const uploadFileField = "file"

// RiskHandler 风险分析 HTTP 处理器
type RiskHandler struct {
	riskService    service.RiskAppService
	maxUploadBytes int64
	logger         logger.Logger
}

// NewRiskHandler 创建风险分析处理器。maxUploadBytes <= 0 表示不限制上传大小
func NewRiskHandler(riskService service.RiskAppService, maxUploadBytes int64, log logger.Logger) *RiskHandler {
	return &RiskHandler{
		riskService:    riskService,
		maxUploadBytes: maxUploadBytes,
		logger:         log.WithComponent("RiskHandler"),
	}
}

// UploadCSV 上传并分类观测数据，替换学院数据集
// POST /api/v1/upload-csv
func (h *RiskHandler) UploadCSV(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	req := dto.UploadRequest{CollegeID: c.DefaultPostForm("college_id", constants.DemoCollegeAlias)}
	cid := service.NormalizeCollegeID(req.CollegeID)
	ctx := context.WithValue(c.Request.Context(), constants.ContextKeyCollegeID, cid)
	c.Request = c.Request.WithContext(ctx)

	fileHeader, err := c.FormFile(uploadFileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if goerrors.As(err, &tooLarge) {
			respondError(c, h.logger, errors.ErrInvalidCSV(fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit)), "upload_csv")
			return
		}
		respondError(c, h.logger, errors.ErrCSVRequired(), "upload_csv")
		return
	}
	req.Filename = fileHeader.Filename

	// 校验扩展名
	if !ingest.IsCSVFilename(req.Filename) {
		respondError(c, h.logger, errors.ErrCSVRequired(), "upload_csv")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, errors.ErrInvalidCSV(err.Error()), "upload_csv")
		return
	}
	defer file.Close()

	observations, err := ingest.ReadObservations(file)
	if err != nil {
		respondError(c, h.logger, err, "upload_csv")
		return
	}

	resp, err := h.riskService.UploadObservations(ctx, req.CollegeID, observations)
	if err != nil {
		respondError(c, h.logger, err, "upload_csv")
		return
	}

	h.logger.Info(ctx, "CSV uploaded",
		logger.String("filename", req.Filename),
		logger.Int("rows", resp.Summary.TotalStudents),
	)
	c.JSON(http.StatusOK, resp)
}

// GetRiskStats 获取学院聚合报告
// GET /api/v1/risk-stats/:college_id
func (h *RiskHandler) GetRiskStats(c *gin.Context) {
	cid := c.Param("college_id")
	resp, err := h.riskService.GetRiskStats(c.Request.Context(), cid)
	if err != nil {
		respondError(c, h.logger, err, "risk_stats")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTeacherStudents 获取教师视图的学生风险列表
// GET /api/v1/teacher/:teacher_id/students
func (h *RiskHandler) GetTeacherStudents(c *gin.Context) {
	var query dto.TeacherStudentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, h.logger, errors.ErrInvalidRequest(err.Error()), "teacher_students")
		return
	}

	resp, err := h.riskService.GetTeacherStudents(c.Request.Context(), c.Param("teacher_id"), &query)
	if err != nil {
		respondError(c, h.logger, err, "teacher_students")
		return
	}
	c.JSON(http.StatusOK, resp)
}
