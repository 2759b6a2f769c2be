package admin

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

// RegisterRoutes expects JWT and admin role middleware on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		// teachers moderation
		admin.GET("/teachers/pending", h.ListPendingTeachers)
		admin.POST("/teachers/:id/approve", h.ApproveTeacher)
		admin.POST("/teachers/:id/suspend", h.SuspendTeacher)

		admin.GET("/stats", h.GetStats)
		admin.GET("/users", h.ListUsers)
	}
}

func (h *Handler) ListPendingTeachers(c *gin.Context) {
	limit, offset := response.Page(c, 20, 100)
	teachers, total, err := h.service.ListPendingTeachers(c.Request.Context(), limit, offset)
	if err != nil {
		response.Internal(c, err, "Failed to load pending teachers")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"pending_teachers": teachers,
		"total":            total,
		"limit":            limit,
		"offset":           offset,
	})
}

func (h *Handler) ApproveTeacher(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.service.ApproveTeacher(c.Request.Context(), id, sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teacher": t})
}

func (h *Handler) SuspendTeacher(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	var req SuspendTeacherRequest
	if !response.BindJSON(c, &req) {
		return
	}

	t, err := h.service.SuspendTeacher(c.Request.Context(), id, sess.UserID, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teacher": t})
}

func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		response.Internal(c, err, "Failed to load statistics")
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var f UserListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid filter")
		return
	}
	limit, offset := response.Page(c, 20, 100)

	users, total, err := h.service.ListUsers(c.Request.Context(), f, limit, offset)
	if err != nil {
		response.Internal(c, err, "Failed to load users")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users, "total": total, "limit": limit, "offset": offset})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Teacher not found")
	case errors.Is(err, ErrReasonRequired):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Reason is required")
	case errors.Is(err, ErrAlreadyActive):
		response.Error(c, http.StatusConflict, response.CodeConflict, "Teacher is already active")
	default:
		response.Internal(c, err, "Moderation failed")
	}
}
