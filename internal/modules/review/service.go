package review

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	ListByTeacher(ctx context.Context, teacherID int64, limit, offset int) ([]domain.Review, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// RatingInvalidator drops cached rating aggregates.
type RatingInvalidator interface {
	InvalidateRating(ctx context.Context, teacherID int64)
}

type Service struct {
	reviews  ReviewRepository
	bookings BookingReader
	ratings  RatingInvalidator
	logger   *zap.Logger
}

func NewService(reviews ReviewRepository, bookings BookingReader, ratings RatingInvalidator, logger *zap.Logger) *Service {
	return &Service{
		reviews:  reviews,
		bookings: bookings,
		ratings:  ratings,
		logger:   logger.With(zap.String("component", "review")),
	}
}

// Create records a review for one of the student's confirmed lessons.
// Each booking takes at most one review.
func (s *Service) Create(ctx context.Context, studentID int64, req CreateReviewRequest) (*domain.Review, error) {
	if studentID <= 0 || req.BookingID <= 0 || req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRequest
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Someone else's booking looks the same as a missing one.
	if b.StudentID != studentID {
		return nil, ErrNotFound
	}
	if b.Status != domain.BookingConfirmed {
		return nil, ErrReviewNotAllowed
	}

	rv := &domain.Review{
		TeacherID: b.TeacherID,
		StudentID: studentID,
		BookingID: b.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.ratings != nil {
		s.ratings.InvalidateRating(ctx, b.TeacherID)
	}
	s.logger.Info("review created", zap.Int64("teacher_id", b.TeacherID), zap.Int64("booking_id", b.ID), zap.Int("rating", rv.Rating))
	return rv, nil
}

func (s *Service) ListByTeacher(ctx context.Context, teacherID int64, limit, offset int) ([]domain.Review, error) {
	if teacherID <= 0 {
		return nil, ErrInvalidRequest
	}
	out, err := s.reviews.ListByTeacher(ctx, teacherID, limit, offset)
	if out == nil {
		out = []domain.Review{}
	}
	return out, err
}
