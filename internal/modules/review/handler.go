package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/pkg/response"
	"tutorhub/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public listing on public and review creation
// on protected. Either group may be nil.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/teachers/:id/reviews", h.ListByTeacher)
	}
	if protected != nil {
		protected.POST("/reviews", h.Create)
	}
}

// Create handles POST /reviews.
func (h *Handler) Create(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	var req CreateReviewRequest
	if !response.BindJSON(c, &req) {
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), sess.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid review")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Booking not found")
		case errors.Is(err, ErrReviewNotAllowed):
			response.Error(c, http.StatusForbidden, "REVIEW_NOT_ALLOWED", "Only confirmed lessons can be reviewed")
		case errors.Is(err, ErrConflict):
			response.Error(c, http.StatusConflict, response.CodeConflict, "This lesson has already been reviewed")
		default:
			response.Internal(c, err, "Failed to save review")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}

// ListByTeacher handles GET /teachers/:id/reviews.
func (h *Handler) ListByTeacher(c *gin.Context) {
	teacherID, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	limit, offset := response.Page(c, 20, 100)

	reviews, err := h.svc.ListByTeacher(c.Request.Context(), teacherID, limit, offset)
	if err != nil {
		response.Internal(c, err, "Failed to load reviews")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews, "limit": limit, "offset": offset})
}
