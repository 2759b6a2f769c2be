package subscription

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

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/subscriptions/plans", h.ListPlans)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subscriptions/me", h.GetMine)
	rg.POST("/subscriptions/me/cancel", h.CancelMine)
}

func (h *Handler) ListPlans(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"plans": h.service.ListPlans()})
}

func (h *Handler) GetMine(c *gin.Context) {
	sess, _ := session.FromGin(c)
	active, err := h.service.GetActive(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Internal(c, err, "Failed to load subscription")
		return
	}
	history, err := h.service.History(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Internal(c, err, "Failed to load subscription")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"active": active, "history": history})
}

func (h *Handler) CancelMine(c *gin.Context) {
	sess, _ := session.FromGin(c)
	if err := h.service.Cancel(c.Request.Context(), sess.UserID); err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "No active subscription")
			return
		}
		response.Internal(c, err, "Failed to cancel subscription")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}
