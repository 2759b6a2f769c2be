package payment

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tutorhub/internal/domain"
)

type PaymentRequest struct {
	Amount          decimal.Decimal    `json:"amount"`
	PaymentType     domain.PaymentType `json:"payment_type" validate:"required"`
	PaymentMethodID *uuid.UUID         `json:"payment_method_id"`
	Metadata        map[string]any     `json:"metadata"`
}

// PlanName reads metadata.plan_name for subscription payments.
func (r PaymentRequest) PlanName() string {
	s, _ := r.Metadata["plan_name"].(string)
	return s
}

type AddPaymentMethodRequest struct {
	Type      domain.PaymentMethodType `json:"type" validate:"required,oneof=card bank wallet"`
	Details   json.RawMessage          `json:"details" validate:"required"`
	IsDefault bool                     `json:"is_default"`
}

type PaymentMethodResponse struct {
	*domain.PaymentMethod
	ParsedDetails domain.MethodDetails `json:"details"`
}
