package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultCurrency = "SAR"

type TransactionType string

const (
	TransactionDeposit       TransactionType = "deposit"
	TransactionLessonPayment TransactionType = "lesson_payment"
	TransactionRefund        TransactionType = "refund"
)

// Wallet holds a user's prepaid balance. Balance always equals the sum of
// the wallet's transactions.
type Wallet struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int64           `json:"user_id" gorm:"not null;uniqueIndex"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(12,2);not null;default:0"`
	Currency  string          `json:"currency" gorm:"type:varchar(3);not null;default:'SAR'"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

func (w *Wallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Currency == "" {
		w.Currency = DefaultCurrency
	}
	return nil
}

// Transaction is an append-only ledger row. Amount is signed: credits are
// positive, debits negative.
type Transaction struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	WalletID    uuid.UUID       `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Type        TransactionType `json:"type" gorm:"type:varchar(16);not null;index"`
	ReferenceID string          `json:"reference_id,omitempty" gorm:"type:varchar(64);index"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
