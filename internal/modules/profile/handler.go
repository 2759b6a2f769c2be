package profile

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
	me := rg.Group("/me")
	{
		me.GET("", h.GetMe)
		me.PATCH("", h.UpdateMe)
		me.POST("/avatar", h.UploadAvatar)

		me.GET("/goals", h.ListGoals)
		me.POST("/goals", h.CreateGoal)
		me.PATCH("/goals/:id", h.UpdateGoal)
		me.DELETE("/goals/:id", h.DeleteGoal)
	}
}

func (h *Handler) GetMe(c *gin.Context) {
	sess, _ := session.FromGin(c)
	p, err := h.service.GetMe(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	sess, _ := session.FromGin(c)
	var req UpdateProfileRequest
	if !response.BindJSON(c, &req) {
		return
	}
	p, err := h.service.UpdateMe(c.Request.Context(), sess.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

// UploadAvatar handles POST /me/avatar (multipart, field "file").
func (h *Handler) UploadAvatar(c *gin.Context) {
	sess, _ := session.FromGin(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAvatarSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Missing file")
		return
	}
	if fh.Size > MaxAvatarSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ErrFileTooLarge.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Internal(c, err, "Failed to read file")
		return
	}
	defer f.Close()

	p, err := h.service.UploadAvatar(c.Request.Context(), sess.UserID, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) ListGoals(c *gin.Context) {
	sess, _ := session.FromGin(c)
	goals, err := h.service.ListGoals(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"goals": goals})
}

func (h *Handler) CreateGoal(c *gin.Context) {
	sess, _ := session.FromGin(c)
	var req CreateGoalRequest
	if !response.BindJSON(c, &req) {
		return
	}
	g, err := h.service.CreateGoal(c.Request.Context(), sess.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"goal": g})
}

func (h *Handler) UpdateGoal(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if !response.BindJSON(c, &req) {
		return
	}
	g, err := h.service.UpdateGoal(c.Request.Context(), sess.UserID, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"goal": g})
}

func (h *Handler) DeleteGoal(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteGoal(c.Request.Context(), sess.UserID, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Access denied")
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrInvalidImage):
		response.Error(c, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	default:
		response.Internal(c, err, "Request failed")
	}
}
