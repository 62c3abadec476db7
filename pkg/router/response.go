package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stunity/backend/pkg/errorx"
)

var errBadRequestBody = errorx.New(errorx.BadRequest, "Cannot bind the request")

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func httpStatus(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.AlreadyExists:
		return http.StatusConflict
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	case errorx.PaymentRequired:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(ginCtx *gin.Context, data any, err error) {
	if err == nil {
		ginCtx.JSON(http.StatusOK, response{Code: 0, Data: data})
		return
	}

	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	ginCtx.JSON(httpStatus(errx.Code), response{
		Code:  int64(errx.Code),
		Error: errx.Message,
	})
}
