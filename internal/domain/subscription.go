package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription rows are never deleted; a user has at most one active row.
type Subscription struct {
	ID          uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      int64              `json:"user_id" gorm:"not null;index"`
	PlanName    string             `json:"plan_name" gorm:"type:varchar(32);not null"`
	Price       decimal.Decimal    `json:"price" gorm:"type:numeric(12,2);not null"`
	Status      SubscriptionStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	StartDate   time.Time          `json:"start_date" gorm:"not null"`
	EndDate     time.Time          `json:"end_date" gorm:"not null;index"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

func (s *Subscription) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Plan struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	DurationMonths int             `json:"duration_months"`
	Description    string          `json:"description"`
}
