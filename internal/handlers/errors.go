package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/internal/services"
	"github.com/huangang/geoconfig/pkg/logger"
	"github.com/huangang/geoconfig/pkg/response"
)

// respondError maps a registry error onto the HTTP error envelope. Internal
// failures are logged with their cause and reported generically.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = &services.Error{Kind: services.KindInternal, Err: err}
	}

	switch svcErr.Kind {
	case services.KindNotFound:
		response.Error(c, response.NewNotFound(svcErr.Message))
	case services.KindAlreadyExists:
		logger.Warn().Str("request_id", middleware.GetRequestID(c)).Msg(svcErr.Message)
		response.Error(c, response.NewConflict(svcErr.Message))
	case services.KindVersionConflict:
		logger.Warn().Str("request_id", middleware.GetRequestID(c)).Msg(svcErr.Message)
		response.Error(c, response.NewConflict(svcErr.Message))
	case services.KindInvalidArgument:
		response.Error(c, response.NewBadRequest(svcErr.Message))
	default:
		logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		response.Error(c, err)
	}
}

// bindError reports a request body that failed to decode or validate.
func bindError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotScalar) {
		response.BadRequest(c, models.ErrNotScalar.Error())
		return
	}
	response.BadRequest(c, middleware.ValidationMessage(err))
}
