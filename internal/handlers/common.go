package handlers

import (
	"errors"
	"strconv"

	apperrors "taskforge/pkg/errors"
	"taskforge/pkg/logger"
	"taskforge/pkg/response"

	"github.com/gin-gonic/gin"
)

// handleError 统一错误出口：业务错误按对外提示返回，
// 其余错误记完整日志后只返回通用提示，不泄露实现细节
func handleError(c *gin.Context, err error, op string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		response.AppError(c, appErr)
		return
	}
	logger.GetLogger().WithError(err).Errorf("%s failed", op)
	response.ServerError(c, "服务器内部错误")
}

// parseIDParam 解析URL中的数字ID参数
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}
