package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Teacher struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	ProfileID       int64           `json:"profile_id" gorm:"not null;uniqueIndex"`
	Bio             string          `json:"bio,omitempty" gorm:"type:text"`
	HourlyRate      decimal.Decimal `json:"hourly_rate" gorm:"type:numeric(12,2);not null;default:0"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null;default:'SAR'"`
	Specialties     []string        `json:"specialties" gorm:"serializer:json"`
	Languages       []string        `json:"languages" gorm:"serializer:json"`
	KoreanLevel     string          `json:"korean_level,omitempty" gorm:"type:varchar(32)"`
	YearsExperience int             `json:"years_experience"`
	IsActive        bool            `json:"is_active" gorm:"not null;default:false;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}

func (Teacher) TableName() string { return "teachers" }

// TeacherRating is the aggregate returned by get_teacher_rating.
type TeacherRating struct {
	TeacherID    int64   `json:"teacher_id"`
	AvgRating    float64 `json:"avg_rating"`
	TotalReviews int64   `json:"total_reviews"`
}

type LessonType struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"type:varchar(64);not null;uniqueIndex"`
	Description     string `json:"description,omitempty" gorm:"type:text"`
	DurationMinutes int    `json:"duration_minutes" gorm:"not null"`
}

func (LessonType) TableName() string { return "lesson_types" }

type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	TeacherID int64     `json:"teacher_id" gorm:"not null;index"`
	StudentID int64     `json:"student_id" gorm:"not null;index"`
	BookingID int64     `json:"booking_id" gorm:"not null;uniqueIndex"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	Student *Profile `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Review) TableName() string { return "reviews" }

// TeacherSummary is the catalog view of a teacher joined with its profile
// and review aggregate.
type TeacherSummary struct {
	ID              int64           `json:"id"`
	ProfileID       int64           `json:"profile_id"`
	FullName        string          `json:"full_name"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	Country         string          `json:"country,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	Currency        string          `json:"currency"`
	Specialties     []string        `json:"specialties" gorm:"serializer:json"`
	Languages       []string        `json:"languages" gorm:"serializer:json"`
	KoreanLevel     string          `json:"korean_level,omitempty"`
	YearsExperience int             `json:"years_experience"`
	AvgRating       float64         `json:"avg_rating"`
	TotalReviews    int64           `json:"total_reviews"`
	CreatedAt       time.Time       `json:"created_at"`
}
