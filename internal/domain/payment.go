package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentWalletRecharge PaymentType = "wallet_recharge"
	PaymentLesson         PaymentType = "lesson_payment"
	PaymentSubscription   PaymentType = "subscription"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentWalletRecharge, PaymentLesson, PaymentSubscription:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentRecord is one row of payment_history. Status moves
// pending -> completed|failed, and completed -> refunded for lesson refunds.
type PaymentRecord struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          int64           `json:"user_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null;default:'SAR'"`
	PaymentType     PaymentType     `json:"payment_type" gorm:"type:varchar(32);not null;index"`
	Status          PaymentStatus   `json:"status" gorm:"type:varchar(16);not null;index"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty" gorm:"type:uuid"`
	Metadata        datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (PaymentRecord) TableName() string { return "payment_history" }

func (p *PaymentRecord) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	return nil
}

// MetadataString reads a string field out of the metadata object.
func (p *PaymentRecord) MetadataString(key string) string {
	if len(p.Metadata) == 0 {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(p.Metadata, &m); err != nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

type PaymentMethodType string

const (
	MethodCard   PaymentMethodType = "card"
	MethodBank   PaymentMethodType = "bank"
	MethodWallet PaymentMethodType = "wallet"
)

var (
	ErrUnknownMethodType    = errors.New("unknown payment method type")
	ErrInvalidMethodDetails = errors.New("invalid payment method details")
)

type PaymentMethod struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int64             `json:"user_id" gorm:"not null;index"`
	Type      PaymentMethodType `json:"type" gorm:"type:varchar(16);not null"`
	Details   datatypes.JSON    `json:"details"`
	IsDefault bool              `json:"is_default" gorm:"not null;default:false"`
	CreatedAt time.Time         `json:"created_at"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

func (m *PaymentMethod) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MethodDetails is the tagged payload stored in PaymentMethod.Details.
// The concrete type is selected by PaymentMethod.Type.
type MethodDetails interface {
	MethodType() PaymentMethodType
	Validate() error
}

type CardDetails struct {
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
	HolderName string `json:"holder_name,omitempty"`
}

func (CardDetails) MethodType() PaymentMethodType { return MethodCard }

func (d CardDetails) Validate() error {
	if d.Brand == "" || !isDigits(d.Last4, 4) {
		return ErrInvalidMethodDetails
	}
	if d.ExpMonth < 1 || d.ExpMonth > 12 || d.ExpYear < 2000 {
		return ErrInvalidMethodDetails
	}
	return nil
}

type BankDetails struct {
	BankName      string `json:"bank_name"`
	IBANLast4     string `json:"iban_last4"`
	AccountHolder string `json:"account_holder"`
}

func (BankDetails) MethodType() PaymentMethodType { return MethodBank }

func (d BankDetails) Validate() error {
	if d.BankName == "" || d.AccountHolder == "" || len(d.IBANLast4) != 4 {
		return ErrInvalidMethodDetails
	}
	return nil
}

type WalletDetails struct {
	Provider string `json:"provider"`
	Account  string `json:"account"`
}

func (WalletDetails) MethodType() PaymentMethodType { return MethodWallet }

func (d WalletDetails) Validate() error {
	if d.Provider == "" || d.Account == "" {
		return ErrInvalidMethodDetails
	}
	return nil
}

// DecodeMethodDetails parses raw details for the given tag. Fields that do
// not belong to the tagged shape are rejected.
func DecodeMethodDetails(t PaymentMethodType, raw []byte) (MethodDetails, error) {
	var target MethodDetails
	switch t {
	case MethodCard:
		var d CardDetails
		if err := strictUnmarshal(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case MethodBank:
		var d BankDetails
		if err := strictUnmarshal(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case MethodWallet:
		var d WalletDetails
		if err := strictUnmarshal(raw, &d); err != nil {
			return nil, err
		}
		target = d
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethodType, t)
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return target, nil
}

// EncodeMethodDetails validates d and returns its tag and JSON form.
func EncodeMethodDetails(d MethodDetails) (PaymentMethodType, datatypes.JSON, error) {
	if d == nil {
		return "", nil, ErrInvalidMethodDetails
	}
	if err := d.Validate(); err != nil {
		return "", nil, err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return "", nil, err
	}
	return d.MethodType(), datatypes.JSON(raw), nil
}

// ParsedDetails decodes the stored details using the row's own tag.
func (m *PaymentMethod) ParsedDetails() (MethodDetails, error) {
	return DecodeMethodDetails(m.Type, m.Details)
}

func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMethodDetails, err)
	}
	return nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
