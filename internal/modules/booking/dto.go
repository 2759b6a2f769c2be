package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	TeacherID  int64            `json:"teacher_id" validate:"required,gt=0"`
	StartTime  time.Time        `json:"start_time" validate:"required"`
	EndTime    time.Time        `json:"end_time" validate:"required"`
	LessonType string           `json:"lesson_type" validate:"required,max=64"`
	Amount     *decimal.Decimal `json:"amount"`
	Notes      string           `json:"notes" validate:"max=2000"`

	StudentID int64 `json:"-"`
}
