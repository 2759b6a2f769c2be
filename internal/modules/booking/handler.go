package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/pkg/response"
	"tutorhub/internal/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects JWT middleware on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/me", h.ListMine)
	rg.GET("/bookings/teaching", h.ListTeaching)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	sess, _ := session.FromGin(c)

	var req CreateBookingRequest
	if !response.BindJSON(c, &req) {
		return
	}
	req.StudentID = sess.UserID

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	sess, _ := session.FromGin(c)
	out, err := h.service.ListForStudent(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *Handler) ListTeaching(c *gin.Context) {
	sess, _ := session.FromGin(c)
	out, err := h.service.ListForTeacher(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *Handler) GetBooking(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), sess, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	b, err := h.service.Cancel(c.Request.Context(), sess, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid booking: end_time must be after start_time and amount must not be negative")
	case errors.Is(err, ErrSelfBooking):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "You cannot book your own lessons")
	case errors.Is(err, ErrTeacherNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Teacher not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Access denied")
	case errors.Is(err, ErrSlotTaken):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "This time slot is already booked")
	case errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrStatusChanged):
		response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
	default:
		response.Internal(c, err, "Failed to process booking")
	}
}
