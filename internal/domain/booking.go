package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	TeacherID   int64           `json:"teacher_id" gorm:"not null;index"`
	StudentID   int64           `json:"student_id" gorm:"not null;index"`
	StartTime   time.Time       `json:"start_time" gorm:"not null;index"`
	EndTime     time.Time       `json:"end_time" gorm:"not null"`
	LessonType  string          `json:"lesson_type" gorm:"type:varchar(64);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null;default:0"`
	Status      BookingStatus   `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	Notes       string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`

	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

func (Booking) TableName() string { return "bookings" }

// AvailabilityWindow is a weekly recurring block a teacher can be booked in.
// StartTime and EndTime are wall-clock "HH:MM" strings.
type AvailabilityWindow struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	TeacherID   int64     `json:"teacher_id" gorm:"not null;index"`
	DayOfWeek   int       `json:"day_of_week" gorm:"not null"`
	StartTime   string    `json:"start_time" gorm:"type:varchar(8);not null"`
	EndTime     string    `json:"end_time" gorm:"type:varchar(8);not null"`
	IsRecurring bool      `json:"is_recurring" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AvailabilityWindow) TableName() string { return "availability" }

// Slot is derived from windows and bookings, never persisted.
type Slot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}
