package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/pkg/cache"
	"tutorhub/internal/repository"
)

const (
	ratingTTL      = 5 * time.Minute
	lessonTypesTTL = time.Hour

	lessonTypesKey = "catalog:lesson_types"
	defaultLimit   = 20
	maxLimit       = 100
)

func ratingKey(teacherID int64) string {
	return fmt.Sprintf("catalog:rating:%d", teacherID)
}

type Service struct {
	teachers TeacherRepository
	cache    cache.Cache
	logger   *zap.Logger
}

func NewService(teachers TeacherRepository, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		teachers: teachers,
		cache:    c,
		logger:   logger.With(zap.String("component", "catalog")),
	}
}

func (s *Service) List(ctx context.Context, f repository.TeacherFilter) ([]domain.TeacherSummary, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	out, err := s.teachers.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	if out == nil {
		out = []domain.TeacherSummary{}
	}
	return out, nil
}

// Get returns an active teacher. Inactive teachers are hidden from the
// public catalog.
func (s *Service) Get(ctx context.Context, teacherID int64) (*TeacherDetail, error) {
	t, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrNotFound
	}

	rating, err := s.GetRating(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return &TeacherDetail{Teacher: t, AvgRating: rating.AvgRating, TotalReviews: rating.TotalReviews}, nil
}

// GetRating is get_teacher_rating behind a short-lived cache.
func (s *Service) GetRating(ctx context.Context, teacherID int64) (*domain.TeacherRating, error) {
	key := ratingKey(teacherID)

	var cached domain.TeacherRating
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn("rating cache read", zap.Int64("teacher_id", teacherID), zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	rating, err := s.teachers.Rating(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher rating: %w", err)
	}
	if err := s.cache.SetJSON(ctx, key, rating, ratingTTL); err != nil {
		s.logger.Warn("rating cache write", zap.Int64("teacher_id", teacherID), zap.Error(err))
	}
	return rating, nil
}

// InvalidateRating drops the cached aggregate after a review is written.
func (s *Service) InvalidateRating(ctx context.Context, teacherID int64) {
	if err := s.cache.Delete(ctx, ratingKey(teacherID)); err != nil {
		s.logger.Warn("rating cache invalidate", zap.Int64("teacher_id", teacherID), zap.Error(err))
	}
}

func (s *Service) LessonTypes(ctx context.Context) ([]domain.LessonType, error) {
	var cached []domain.LessonType
	if ok, err := s.cache.GetJSON(ctx, lessonTypesKey, &cached); err != nil {
		s.logger.Warn("lesson types cache read", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	out, err := s.teachers.LessonTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("lesson types: %w", err)
	}
	if out == nil {
		out = []domain.LessonType{}
	}
	if err := s.cache.SetJSON(ctx, lessonTypesKey, out, lessonTypesTTL); err != nil {
		s.logger.Warn("lesson types cache write", zap.Error(err))
	}
	return out, nil
}

// UpsertMyTeacherProfile creates or replaces the caller's teacher row.
func (s *Service) UpsertMyTeacherProfile(ctx context.Context, profileID int64, req UpsertTeacherRequest) (*domain.Teacher, error) {
	if req.HourlyRate.IsNegative() {
		return nil, fmt.Errorf("%w: hourly_rate must not be negative", ErrValidation)
	}

	t, err := s.teachers.GetByProfileID(ctx, profileID)
	isNew := errors.Is(err, repository.ErrNotFound)
	if err != nil && !isNew {
		return nil, err
	}
	if isNew {
		t = &domain.Teacher{ProfileID: profileID}
	}

	t.Bio = strings.TrimSpace(req.Bio)
	t.HourlyRate = req.HourlyRate.Round(2)
	t.Currency = strings.ToUpper(req.Currency)
	if t.Currency == "" {
		t.Currency = "SAR"
	}
	t.Specialties = normalizeTags(req.Specialties)
	t.Languages = normalizeTags(req.Languages)
	t.KoreanLevel = req.KoreanLevel
	t.YearsExperience = req.YearsExperience
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if isNew {
		err = s.teachers.Create(ctx, t)
	} else {
		err = s.teachers.Save(ctx, t)
	}
	if err != nil {
		return nil, fmt.Errorf("save teacher: %w", err)
	}
	s.logger.Info("teacher profile saved", zap.Int64("teacher_id", t.ID), zap.Bool("created", isNew))
	return t, nil
}

func normalizeTags(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
