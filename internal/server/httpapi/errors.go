package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string      `json:"error"`
	Kind  access.Kind `json:"kind"`
}

var statusByKind = map[access.Kind]int{
	access.NotFound:        http.StatusNotFound,
	access.Forbidden:       http.StatusForbidden,
	access.Conflict:        http.StatusConflict,
	access.Invalid:         http.StatusBadRequest,
	access.Unauthenticated: http.StatusUnauthorized,
	access.Unavailable:     http.StatusServiceUnavailable,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k access.Kind) int {
	if code, ok := statusByKind[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, status int, kind access.Kind, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Kind: kind})
}

// writeError classifies err and renders it. Internal errors are logged and
// replaced by a generic message.
func (s *Server) writeError(c *gin.Context, err error) {
	kind := access.KindOf(err)
	status := StatusFor(kind)

	msg := err.Error()
	switch {
	case kind == access.Internal || kind == access.Unavailable:
		s.logger.Error(c.Request.Context(), "request error", "route", c.FullPath(), "error", err)
		msg = common.ErrorInternal.Error()
	case errors.Is(err, common.ErrRefreshTokenExpired):
		msg = common.ErrRefreshTokenExpired.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		msg = common.ErrorUnauthorized.Error()
	}

	abortWithError(c, status, kind, msg)
}
