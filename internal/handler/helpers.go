package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
	"github.com/worldlore/lorekeeper/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	if ve, ok := appErr.AsValidation(err); ok {
		response.Invalid(c, ve.Msg)
		return
	}
	if appErr.IsNotFound(err) {
		response.NotFound(c, err.Error())
		return
	}
	if ue, ok := appErr.AsUpstream(err); ok {
		response.Upstream(c, ue)
		return
	}
	response.Internal(c)
}
