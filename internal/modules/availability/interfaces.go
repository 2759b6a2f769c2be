package availability

import (
	"context"
	"time"

	"tutorhub/internal/domain"
)

type WindowRepository interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.AvailabilityWindow, error)
	Create(ctx context.Context, w *domain.AvailabilityWindow) error
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error)
	Delete(ctx context.Context, id int64) error
}

type BookingReader interface {
	ListOverlapping(ctx context.Context, teacherID int64, from, to time.Time) ([]domain.Booking, error)
}

type TeacherReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Teacher, error)
	GetByProfileID(ctx context.Context, profileID int64) (*domain.Teacher, error)
}
