package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/internal/interface/middleware"
	"github.com/oksasatya/user-auth-service/pkg/apperror"
	"github.com/oksasatya/user-auth-service/pkg/response"
	"github.com/oksasatya/user-auth-service/pkg/validation"
)

const msgInternal = "Something went wrong!"

// writeError maps err to its status and body. Anything that is not an
// expected apperror is logged and reported as a bare 500.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Kind != apperror.KindInternal {
		if ae.Kind == apperror.KindValidation && len(ae.Fields) > 0 {
			response.ValidationErrors(c, ae.Fields)
			return
		}
		response.Error(c, ae.Kind.HTTPStatus(), ae.Message)
		return
	}

	_ = c.Error(err)
	logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"path":       c.FullPath(),
	}).Error("request failed")
	response.Error(c, http.StatusInternalServerError, msgInternal)
}

// bindJSON decodes and validates the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.ValidationErrors(c, validation.ToFieldErrors(err))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints where an empty body means {}.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.ValidationErrors(c, validation.ToFieldErrors(err))
		return false
	}
	return true
}
