package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutorhub/internal/domain"
	"tutorhub/internal/modules/subscription"
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
	rg.POST("/payments", h.ProcessPayment)
	rg.GET("/payments", h.ListPayments)
	rg.POST("/bookings/:id/pay", h.PayBooking)

	methods := rg.Group("/payment-methods")
	{
		methods.GET("", h.ListMethods)
		methods.POST("", h.AddMethod)
		methods.DELETE("/:id", h.DeleteMethod)
		methods.POST("/:id/default", h.SetDefaultMethod)
	}
}

func (h *Handler) ProcessPayment(c *gin.Context) {
	sess, _ := session.FromGin(c)

	var req PaymentRequest
	if !response.BindJSON(c, &req) {
		return
	}

	record, err := h.service.ProcessPayment(c.Request.Context(), sess.UserID, req)
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) && record != nil {
			response.ErrorWithDetails(c, http.StatusPaymentRequired, "PAYMENT_DECLINED", "Payment was declined", gin.H{"payment": record})
			return
		}
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": record})
}

func (h *Handler) ListPayments(c *gin.Context) {
	sess, _ := session.FromGin(c)
	out, err := h.service.ListPayments(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": out})
}

func (h *Handler) PayBooking(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	b, err := h.service.ProcessBookingPayment(c.Request.Context(), sess.UserID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMethods(c *gin.Context) {
	sess, _ := session.FromGin(c)
	methods, err := h.service.ListPaymentMethods(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		details, err := methods[i].ParsedDetails()
		if err != nil {
			// Rows written before validation tightened are skipped.
			continue
		}
		out = append(out, PaymentMethodResponse{PaymentMethod: &methods[i], ParsedDetails: details})
	}
	response.Success(c, http.StatusOK, gin.H{"payment_methods": out})
}

func (h *Handler) AddMethod(c *gin.Context) {
	sess, _ := session.FromGin(c)

	var req AddPaymentMethodRequest
	if !response.BindJSON(c, &req) {
		return
	}
	m, err := h.service.AddPaymentMethod(c.Request.Context(), sess.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	details, _ := m.ParsedDetails()
	response.Success(c, http.StatusCreated, gin.H{"payment_method": PaymentMethodResponse{PaymentMethod: m, ParsedDetails: details}})
}

func (h *Handler) DeleteMethod(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	if err := h.service.DeletePaymentMethod(c.Request.Context(), sess.UserID, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) SetDefaultMethod(c *gin.Context) {
	sess, _ := session.FromGin(c)
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	if err := h.service.SetDefaultPaymentMethod(c.Request.Context(), sess.UserID, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"default": id})
}

func uuidParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidPaymentType),
		errors.Is(err, ErrAmountMismatch), errors.Is(err, subscription.ErrUnknownPlan),
		errors.Is(err, domain.ErrUnknownMethodType), errors.Is(err, domain.ErrInvalidMethodDetails):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrMethodNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Payment method not found")
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Access denied")
	case errors.Is(err, ErrInsufficientFunds):
		response.Error(c, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", "Wallet balance is too low for this lesson")
	case errors.Is(err, ErrBookingNotPayable), errors.Is(err, ErrBookingNotConfirmed):
		response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
	default:
		response.Internal(c, err, "Failed to process payment")
	}
}
