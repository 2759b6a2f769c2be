package catalog

import (
	"github.com/shopspring/decimal"

	"tutorhub/internal/domain"
)

type UpsertTeacherRequest struct {
	Bio             string          `json:"bio" validate:"max=4000"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
	Specialties     []string        `json:"specialties" validate:"max=20,dive,min=1,max=64"`
	Languages       []string        `json:"languages" validate:"max=20,dive,min=1,max=32"`
	KoreanLevel     string          `json:"korean_level" validate:"max=32"`
	YearsExperience int             `json:"years_experience" validate:"gte=0,lte=80"`
	IsActive        *bool           `json:"is_active"`
}

// TeacherDetail is a teacher with its profile and review aggregate.
type TeacherDetail struct {
	*domain.Teacher
	AvgRating    float64 `json:"avg_rating"`
	TotalReviews int64   `json:"total_reviews"`
}
