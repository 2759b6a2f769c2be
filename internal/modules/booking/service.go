package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/metrics"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
)

type Service struct {
	bookings BookingRepository
	teachers TeacherReader
	refunder Refunder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(
	bookings BookingRepository,
	teachers TeacherReader,
	refunder Refunder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		bookings: bookings,
		teachers: teachers,
		refunder: refunder,
		metrics:  m,
		logger:   logger,
	}
}

// LessonCost prices a lesson at the hourly rate pro rata, rounded to cents.
func LessonCost(hourlyRate decimal.Decimal, minutes int) decimal.Decimal {
	return hourlyRate.Mul(decimal.NewFromInt(int64(minutes))).Div(decimal.NewFromInt(60)).Round(2)
}

// CreateBooking inserts a pending booking. A submitted amount is rounded
// to cents; when it is missing the teacher's hourly rate is applied. Slot
// availability is not re-checked here: the store rejects a second live
// booking at the same start time.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if !req.EndTime.After(req.StartTime) || req.LessonType == "" {
		s.count("invalid")
		return nil, ErrValidation
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		s.count("invalid")
		return nil, ErrValidation
	}

	teacher, err := s.teachers.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	if teacher.ProfileID == req.StudentID {
		s.count("invalid")
		return nil, ErrSelfBooking
	}

	amount := LessonCost(teacher.HourlyRate, int(req.EndTime.Sub(req.StartTime).Minutes()))
	if req.Amount != nil {
		amount = req.Amount.Round(2)
	}

	b := &domain.Booking{
		TeacherID:  teacher.ID,
		StudentID:  req.StudentID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		LessonType: req.LessonType,
		Amount:     amount,
		Status:     domain.BookingPending,
		Notes:      req.Notes,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.count("slot_taken")
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.count("created")
	s.logger.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("teacher_id", b.TeacherID),
		zap.Int64("student_id", b.StudentID),
		zap.Time("start_time", b.StartTime),
		zap.String("amount", b.Amount.StringFixed(2)),
	)
	return b, nil
}

func (s *Service) ListForStudent(ctx context.Context, studentID int64) ([]domain.Booking, error) {
	out, err := s.bookings.ListByStudent(ctx, studentID)
	if out == nil {
		out = []domain.Booking{}
	}
	return out, err
}

func (s *Service) ListForTeacher(ctx context.Context, profileID int64) ([]domain.Booking, error) {
	teacher, err := s.teachers.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	out, err := s.bookings.ListByTeacher(ctx, teacher.ID)
	if out == nil {
		out = []domain.Booking{}
	}
	return out, err
}

// GetByID returns the booking when actor is one of its participants or an
// admin.
func (s *Service) GetByID(ctx context.Context, actor *session.Session, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ok, err := s.isParticipant(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return b, nil
}

// Cancel cancels a pending booking directly. A confirmed booking is
// refunded to the student's wallet by the Refunder.
func (s *Service) Cancel(ctx context.Context, actor *session.Session, id int64) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case domain.BookingCancelled:
		return nil, ErrAlreadyCancelled

	case domain.BookingPending:
		if err := s.bookings.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingCancelled); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return nil, ErrStatusChanged
			}
			return nil, err
		}
		b.Status = domain.BookingCancelled

	case domain.BookingConfirmed:
		if s.refunder == nil {
			return nil, fmt.Errorf("cancel confirmed booking %d: no refunder configured", b.ID)
		}
		refunded, err := s.refunder.RefundBooking(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b = refunded
	}

	s.logger.Info("booking cancelled",
		zap.Int64("booking_id", b.ID),
		zap.Int64("actor_id", actor.UserID),
	)
	return b, nil
}

func (s *Service) isParticipant(ctx context.Context, actor *session.Session, b *domain.Booking) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.Is(domain.RoleAdmin) || b.StudentID == actor.UserID {
		return true, nil
	}
	teacher, err := s.teachers.GetByID(ctx, b.TeacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return teacher.ProfileID == actor.UserID, nil
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsCreated.WithLabelValues(outcome).Inc()
	}
}
