package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-auth-service/pkg/apperror"
)

// ErrorBody is the JSON shape for every non-validation failure.
type ErrorBody struct {
	Error string `json:"error"`
}

// ValidationBody lists the offending fields of a rejected request.
type ValidationBody struct {
	Errors []apperror.FieldError `json:"errors"`
}

type MessageBody struct {
	Message string `json:"message"`
}

type TokenBody struct {
	Token string `json:"token"`
}

// Success writes data as the JSON body with the given status (200 when zero).
func Success[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, message string) {
	Success(c, status, MessageBody{Message: message})
}

func Token(c *gin.Context, status int, token string) {
	Success(c, status, TokenBody{Token: token})
}

// Error aborts the request with an {error} body.
func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

// ValidationErrors aborts the request with a 400 {errors:[...]} body.
func ValidationErrors(c *gin.Context, fields []apperror.FieldError) {
	if fields == nil {
		fields = []apperror.FieldError{}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationBody{Errors: fields})
}
