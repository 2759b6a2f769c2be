package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/metrics"
	"tutorhub/internal/repository"
)

const dateLayout = "2006-01-02"

type Service struct {
	windows  WindowRepository
	bookings BookingReader
	teachers TeacherReader
	loc      *time.Location
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(windows WindowRepository, bookings BookingReader, teachers TeacherReader, loc *time.Location, m *metrics.Metrics, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		windows:  windows,
		bookings: bookings,
		teachers: teachers,
		loc:      loc,
		metrics:  m,
		logger:   logger,
	}
}

// GetSlots resolves the bookable slots of a teacher for one calendar day
// in the service time zone.
func (s *Service) GetSlots(ctx context.Context, teacherID int64, date string) (*SlotsResponse, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := s.teachers.GetByID(ctx, teacherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeacherMissing
		}
		return nil, err
	}

	windows, err := s.windows.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	bookings, err := s.bookings.ListOverlapping(ctx, teacherID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	for i := range bookings {
		bookings[i].StartTime = bookings[i].StartTime.In(s.loc)
		bookings[i].EndTime = bookings[i].EndTime.In(s.loc)
	}

	slots := ComputeSlots(day, windows, bookings)
	if s.metrics != nil {
		s.metrics.SlotQueries.Inc()
	}
	resp := newSlotsResponse(teacherID, day, slots)
	return &resp, nil
}

func (s *Service) ListWindows(ctx context.Context, teacherID int64) ([]domain.AvailabilityWindow, error) {
	out, err := s.windows.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.AvailabilityWindow{}
	}
	return out, nil
}

// AddWindow stores a weekly window for the teacher owned by profileID.
// Overlapping windows are allowed.
func (s *Service) AddWindow(ctx context.Context, profileID int64, req CreateWindowRequest) (*domain.AvailabilityWindow, error) {
	teacher, err := s.ownTeacher(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, ErrValidation
	}
	startMin, ok1 := parseClock(req.StartTime)
	endMin, ok2 := parseClock(req.EndTime)
	if !ok1 || !ok2 || endMin <= startMin {
		return nil, ErrValidation
	}

	w := &domain.AvailabilityWindow{
		TeacherID:   teacher.ID,
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsRecurring: true,
	}
	if req.IsRecurring != nil {
		w.IsRecurring = *req.IsRecurring
	}
	if err := s.windows.Create(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("availability window added",
		zap.Int64("teacher_id", teacher.ID),
		zap.Int("day_of_week", w.DayOfWeek),
		zap.String("start", w.StartTime),
		zap.String("end", w.EndTime),
	)
	return w, nil
}

func (s *Service) DeleteWindow(ctx context.Context, profileID, windowID int64) error {
	teacher, err := s.ownTeacher(ctx, profileID)
	if err != nil {
		return err
	}
	w, err := s.windows.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWindowNotFound
		}
		return err
	}
	if w.TeacherID != teacher.ID {
		return ErrForbidden
	}
	return s.windows.Delete(ctx, windowID)
}

func (s *Service) ownTeacher(ctx context.Context, profileID int64) (*domain.Teacher, error) {
	t, err := s.teachers.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeacherMissing
		}
		return nil, err
	}
	return t, nil
}
