package booking

import (
	"context"

	"tutorhub/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByStudent(ctx context.Context, studentID int64) ([]domain.Booking, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
}

type TeacherReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Teacher, error)
	GetByProfileID(ctx context.Context, profileID int64) (*domain.Teacher, error)
}

// Refunder returns a confirmed booking's payment to the student's wallet
// and cancels the booking in the same unit of work.
type Refunder interface {
	RefundBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
}
