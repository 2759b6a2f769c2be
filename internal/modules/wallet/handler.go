package wallet

import (
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wallet", h.GetMyWallet)
	rg.GET("/wallet/transactions", h.ListMyTransactions)
}

func (h *Handler) GetMyWallet(c *gin.Context) {
	sess, _ := session.FromGin(c)
	w, err := h.service.GetOrCreateWallet(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Internal(c, err, "Failed to load wallet")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallet": w})
}

func (h *Handler) ListMyTransactions(c *gin.Context) {
	sess, _ := session.FromGin(c)
	txns, err := h.service.ListTransactions(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Internal(c, err, "Failed to load transactions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transactions": txns})
}
