package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

// RatingInvalidator drops cached catalog data for a teacher whose
// visibility changed.
type RatingInvalidator interface {
	InvalidateRating(ctx context.Context, teacherID int64)
}

type Service struct {
	repos   *repository.Repositories
	catalog RatingInvalidator
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(repos *repository.Repositories, catalog RatingInvalidator, logger *zap.Logger) *Service {
	return &Service{
		repos:   repos,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// -------------------- Teachers moderation --------------------

// ListPendingTeachers returns teachers that have not been activated yet,
// oldest first.
func (s *Service) ListPendingTeachers(ctx context.Context, limit, offset int) ([]PendingTeacher, int64, error) {
	q := s.repos.DB().WithContext(ctx).
		Model(&domain.Teacher{}).
		Where("is_active = ?", false)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teachers []domain.Teacher
	if err := q.Preload("Profile").
		Order("created_at asc").
		Limit(limit).
		Offset(offset).
		Find(&teachers).Error; err != nil {
		return nil, 0, err
	}

	out := make([]PendingTeacher, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, PendingTeacher{
			TeacherID: t.ID,
			Profile:   t.Profile,
			Bio:       t.Bio,
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, total, nil
}

// ApproveTeacher makes the teacher visible in the catalog.
func (s *Service) ApproveTeacher(ctx context.Context, teacherID, adminID int64) (*domain.Teacher, error) {
	t, err := s.teacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if t.IsActive {
		return nil, ErrAlreadyActive
	}

	t.IsActive = true
	if err := s.repos.Teachers.Save(ctx, t); err != nil {
		return nil, err
	}
	s.catalog.InvalidateRating(ctx, t.ID)

	s.logger.Info("teacher approved",
		zap.Int64("teacher_id", t.ID),
		zap.Int64("admin_id", adminID),
	)
	return t, nil
}

// SuspendTeacher hides the teacher from the catalog. Existing bookings
// are left untouched.
func (s *Service) SuspendTeacher(ctx context.Context, teacherID, adminID int64, reason string) (*domain.Teacher, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	t, err := s.teacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	t.IsActive = false
	if err := s.repos.Teachers.Save(ctx, t); err != nil {
		return nil, err
	}
	s.catalog.InvalidateRating(ctx, t.ID)

	s.logger.Info("teacher suspended",
		zap.Int64("teacher_id", t.ID),
		zap.Int64("admin_id", adminID),
		zap.String("reason", reason),
	)
	return t, nil
}

func (s *Service) teacher(ctx context.Context, id int64) (*domain.Teacher, error) {
	t, err := s.repos.Teachers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

// -------------------- Statistics --------------------

func (s *Service) GetStatistics(ctx context.Context) (*StatisticsResponse, error) {
	db := s.repos.DB().WithContext(ctx)
	var st StatisticsResponse

	if err := db.Model(&domain.Profile{}).Where("role = ?", domain.RoleStudent).Count(&st.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Teacher{}).Where("is_active = ?", true).Count(&st.TotalTeachers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Teacher{}).Where("is_active = ?", false).Count(&st.PendingTeachers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Booking{}).Count(&st.TotalBookings).Error; err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := db.Model(&domain.Booking{}).
		Where("created_at >= ? AND created_at < ?", start, start.Add(24*time.Hour)).
		Count(&st.TodayBookings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Subscription{}).
		Where("status = ?", domain.SubscriptionActive).
		Count(&st.ActivePlans).Error; err != nil {
		return nil, err
	}

	var amounts []decimal.Decimal
	if err := db.Model(&domain.PaymentRecord{}).
		Where("status = ?", domain.PaymentCompleted).
		Pluck("amount", &amounts).Error; err != nil {
		return nil, err
	}
	st.PaymentsVolume = decimal.Sum(decimal.Zero, amounts...).StringFixed(2)

	return &st, nil
}

// -------------------- Users --------------------

// ListUsers supports simple filters + pagination.
func (s *Service) ListUsers(ctx context.Context, filter UserListFilter, limit, offset int) ([]domain.Profile, int64, error) {
	q := s.repos.DB().WithContext(ctx).Model(&domain.Profile{})

	if role := strings.TrimSpace(filter.Role); role != "" {
		q = q.Where("role = ?", role)
	}
	if sv := strings.ToLower(strings.TrimSpace(filter.Query)); sv != "" {
		sv = "%" + sv + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", sv, sv)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.Profile
	if err := q.Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
