// README: Booking read handlers (list, get by id).
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yahu/internal/modules/booking"
	"yahu/internal/types"
)

// BookingReader is the read-only slice of the booking service.
type BookingReader interface {
	Get(ctx context.Context, id types.ID) (*booking.Booking, error)
	List(ctx context.Context, limit int) ([]*booking.Booking, error)
}

type BookingHandler struct {
	bookings BookingReader
}

func NewBookingHandler(svc BookingReader) *BookingHandler {
	return &BookingHandler{bookings: svc}
}

// List handles GET /api/bookings.
func (h *BookingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.bookings.List(c.Request.Context(), limit)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"bookings": list})
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}
