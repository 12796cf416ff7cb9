package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/pagination"
	"shareit/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) handleHealth(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health(c.Request.Context()); err != nil {
			s.log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) handleAddBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		s.respondError(c, err)
		return
	}

	booking, err := s.deps.Bookings.Add(c.Request.Context(), c.GetInt64(ctxUserID), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (s *HTTPServer) handleChangeStatus(c *gin.Context) {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: approved must be true or false", errBadRequest))
		return
	}

	booking, err := s.deps.Bookings.ChangeStatus(c.Request.Context(), bookingID, approved, c.GetInt64(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (s *HTTPServer) handleGetBooking(c *gin.Context) {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	booking, err := s.deps.Bookings.GetByID(c.Request.Context(), bookingID, c.GetInt64(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (s *HTTPServer) handleUserBookings(c *gin.Context) {
	state, page, err := s.listingParams(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	bookings, err := s.deps.Bookings.GetAllByUserID(c.Request.Context(), c.GetInt64(ctxUserID), state, page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (s *HTTPServer) handleOwnerBookings(c *gin.Context) {
	state, page, err := s.listingParams(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	bookings, err := s.deps.Bookings.GetAllForItemOwnerID(c.Request.Context(), c.GetInt64(ctxUserID), state, page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (s *HTTPServer) handleOwnerExport(c *gin.Context) {
	state, err := stateParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	bookings, err := s.deps.Bookings.GetAllForItemOwnerID(c.Request.Context(), c.GetInt64(ctxUserID), state, models.Unpaged)
	if err != nil {
		s.respondError(c, err)
		return
	}

	now := s.deps.Now()
	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, state, now, bookings); err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(state, now)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *HTTPServer) handleGetItem(c *gin.Context) {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	view, err := s.deps.Items.GetItem(c.Request.Context(), itemID, c.GetInt64(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(view))
}

func (s *HTTPServer) handleOwnerItems(c *gin.Context) {
	page, err := s.pageParams(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	views, err := s.deps.Items.GetOwnerItems(c.Request.Context(), c.GetInt64(ctxUserID), page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]itemResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toItemResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) listingParams(c *gin.Context) (models.BookingState, models.Page, error) {
	state, err := stateParam(c)
	if err != nil {
		return "", models.Page{}, err
	}
	page, err := s.pageParams(c)
	if err != nil {
		return "", models.Page{}, err
	}
	return state, page, nil
}

func (s *HTTPServer) pageParams(c *gin.Context) (models.Page, error) {
	from, err := queryInt(c, "from", 0)
	if err != nil {
		return models.Page{}, err
	}
	size, err := queryInt(c, "size", s.booking.DefaultPageSize)
	if err != nil {
		return models.Page{}, err
	}
	return pagination.Window(from, size)
}

// stateParam reads the state filter; absent or empty means ALL.
func stateParam(c *gin.Context) (models.BookingState, error) {
	raw, ok := c.GetQuery("state")
	if !ok || raw == "" {
		return models.StateAll, nil
	}
	return service.ParseState(raw)
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return v, nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}
