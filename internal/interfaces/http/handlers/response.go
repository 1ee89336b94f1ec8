package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// respondError writes the error envelope and logs according to severity.
func respondError(c *gin.Context, log logger.Logger, err error, operation string) {
	status := errors.StatusOf(err)
	fields := []logger.Field{logger.String("operation", operation), logger.Int("status", status)}
	if appErr, ok := errors.AsAppError(err); ok {
		fields = append(fields, logger.String("error_code", string(appErr.Code())))
	}

	if errors.ShouldLogError(err) {
		log.Error(c.Request.Context(), "Request failed", err, fields...)
	} else {
		log.Warn(c.Request.Context(), "Request rejected", append(fields, logger.Err(err))...)
	}

	_ = c.Error(err)
	c.JSON(status, errors.ToGenericErrorResponse(err))
}
