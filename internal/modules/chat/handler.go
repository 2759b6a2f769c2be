package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tutorhub/internal/pkg/response"
	"tutorhub/internal/session"
)

type Handler struct {
	service  *Service
	hub      *Hub
	auth     *session.Authenticator
	upgrader websocket.Upgrader
}

// NewHandler builds the chat handler. An empty origin list accepts any
// WebSocket origin.
func NewHandler(service *Service, hub *Hub, auth *session.Authenticator, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		service: service,
		hub:     hub,
		auth:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterRoutes expects JWT middleware on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/conversations", h.ListConversations)
	rg.GET("/messages/:userId", h.GetMessages)
	rg.POST("/messages", h.SendMessage)
	rg.POST("/messages/:userId/read", h.MarkAsRead)
}

// RegisterWSRoute registers the socket endpoint. Browsers cannot set
// headers on upgrade requests, so it authenticates from ?token= itself.
func (h *Handler) RegisterWSRoute(rg *gin.RouterGroup) {
	rg.GET("/ws/messages", h.ServeWS)
}

func (h *Handler) ListConversations(c *gin.Context) {
	sess, _ := session.FromGin(c)
	convs, err := h.service.FetchConversations(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Internal(c, err, "Failed to load conversations")
		return
	}
	var unread int
	for _, conv := range convs {
		unread += conv.UnreadCount
	}
	response.Success(c, http.StatusOK, gin.H{"conversations": convs, "unread_total": unread})
}

func (h *Handler) GetMessages(c *gin.Context) {
	sess, _ := session.FromGin(c)
	otherID, ok := response.IDParam(c, "userId")
	if !ok {
		return
	}
	limit, offset := response.Page(c, 50, 200)

	msgs, err := h.service.ListThread(c.Request.Context(), sess.UserID, otherID, limit, offset)
	if err != nil {
		response.Internal(c, err, "Failed to load messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs, "limit": limit, "offset": offset})
}

func (h *Handler) SendMessage(c *gin.Context) {
	sess, _ := session.FromGin(c)

	var req SendMessageRequest
	if !response.BindJSON(c, &req) {
		return
	}

	m, err := h.service.SendMessage(c.Request.Context(), sess.UserID, req.RecipientID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong), errors.Is(err, ErrSelfMessage):
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
		case errors.Is(err, ErrRecipientMissing):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Recipient not found")
		default:
			response.Internal(c, err, "Failed to send message")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	sess, _ := session.FromGin(c)
	senderID, ok := response.IDParam(c, "userId")
	if !ok {
		return
	}
	n, err := h.service.MarkMessagesAsRead(c.Request.Context(), sess.UserID, senderID)
	if err != nil {
		response.Internal(c, err, "Failed to mark messages as read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": n})
}

func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing token")
		return
	}

	sess, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	h.hub.ServeWS(session.NewContext(c.Request.Context(), sess), conn, sess.UserID)
}
