package api

import (
	"errors"
	"net/http"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/pagination"

	"github.com/gin-gonic/gin"
)

// errBadRequest marks malformed input detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

// statusFor maps an error kind to its HTTP status. Foreign bookings and
// self-booking attempts are reported as not found.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrSelfBooking):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTemporal),
		errors.Is(err, domain.ErrItemNotAvailable),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrUnknownState),
		errors.Is(err, pagination.ErrInvalidRange),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if errors.Is(err, domain.ErrUnknownState) {
		message = unknownStateMessage(err)
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("request_id", c.GetString(ctxRequestID)).Msg("request failed")
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// unknownStateMessage renders the client-facing "Unknown state: X" text.
func unknownStateMessage(err error) string {
	msg := err.Error()
	i := strings.Index(msg, domain.ErrUnknownState.Error())
	if i < 0 {
		return msg
	}
	return "Unknown state" + msg[i+len(domain.ErrUnknownState.Error()):]
}
