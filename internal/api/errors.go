package api

import (
	"alcyxob/routine-progress/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindEmpty:
		return http.StatusUnprocessableEntity
	case service.KindConflict:
		return http.StatusConflict
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError aborts with the status matching err. Errors without a
// kind are internal; their detail goes to the request log, not the client.
func respondServiceError(c *gin.Context, err error, fallback string) {
	if kind, ok := service.KindOf(err); ok {
		abortWithError(c, statusFor(kind), err.Error())
		return
	}
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, fallback)
}
