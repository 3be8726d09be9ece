package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"videogen-service/pkg/errno"
)

// Response is the uniform HTTP envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed writes an error envelope, mapping errno codes to HTTP statuses.
// Internal error details never reach the client.
func Failed(ctx *gin.Context, err error) {
	code := errno.ErrUnknown

	var e *errno.Errno
	var biz *errno.BizError
	switch {
	case errors.As(err, &biz):
		code = biz.Errno
	case errors.As(err, &e):
		code = e
	}

	status := http.StatusInternalServerError
	switch {
	case code.Code == 400 || code.Code >= 20000:
		status = http.StatusBadRequest
	case code.Code == 401:
		status = http.StatusUnauthorized
	case code.Code == 403:
		status = http.StatusForbidden
	case code.Code == 404 || code == errno.ErrVideoJobNotFound:
		status = http.StatusNotFound
	}
	if code == errno.ErrVideoJobNotFound {
		status = http.StatusNotFound
	}

	ctx.JSON(status, Response{
		Code:    code.Code,
		Message: code.Message,
	})
}
