package api

import (
	"errors"
	"net/http"

	"flashbill/config"
	"flashbill/logger"
	"flashbill/models"
	"flashbill/service"

	"github.com/gin-gonic/gin"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情，避免信息泄露
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// respondError 把服务层错误映射为 HTTP 状态与业务码
func respondError(c *gin.Context, err error, fallback string) {
	var vErr *models.ValidationError
	var genErr *service.GenerationError
	switch {
	case errors.As(err, &vErr):
		BadRequest(c, vErr.Message)
	case errors.Is(err, service.ErrInvalidCode):
		Error(c, http.StatusBadRequest, CodeInvalidCode, err.Error())
	case errors.Is(err, service.ErrEmailDisabled):
		Error(c, http.StatusBadRequest, CodeEmailDisabled, err.Error())
	case errors.As(err, &genErr) && errors.Is(err, service.ErrNotFound):
		NotFound(c, "账本不存在")
	case errors.As(err, &genErr) && errors.Is(err, service.ErrForbidden):
		Forbidden(c, "只有账本创建者可以生成邀请码")
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Error(c, http.StatusConflict, CodeConflict, err.Error())
	default:
		logger.WithComponent("api").WithError(err).WithField("path", c.FullPath()).Error(fallback)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
