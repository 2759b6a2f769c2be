package availability

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

// RegisterPublicRoutes registers routes that need no session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/teachers/:id/slots", h.GetSlots)
	rg.GET("/teachers/:id/availability", h.ListWindows)
}

// RegisterTeacherRoutes expects auth and teacher-role middleware on rg.
func (h *Handler) RegisterTeacherRoutes(rg *gin.RouterGroup) {
	rg.POST("/me/availability", h.AddWindow)
	rg.DELETE("/me/availability/:id", h.DeleteWindow)
}

func (h *Handler) GetSlots(c *gin.Context) {
	teacherID, ok := response.IDParam(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "date query parameter is required (YYYY-MM-DD)")
		return
	}

	out, err := h.service.GetSlots(c.Request.Context(), teacherID, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) ListWindows(c *gin.Context) {
	teacherID, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.service.ListWindows(c.Request.Context(), teacherID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"availability": out})
}

func (h *Handler) AddWindow(c *gin.Context) {
	sess, _ := session.FromGin(c)

	var req CreateWindowRequest
	if !response.BindJSON(c, &req) {
		return
	}

	w, err := h.service.AddWindow(c.Request.Context(), sess.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"availability": w})
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteWindow(c.Request.Context(), sess.UserID, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "date must be YYYY-MM-DD")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "day_of_week must be 0-6 and start_time before end_time")
	case errors.Is(err, ErrTeacherMissing):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Teacher not found")
	case errors.Is(err, ErrWindowNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Availability window not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Window belongs to another teacher")
	default:
		response.Internal(c, err, "Failed to process availability")
	}
}
