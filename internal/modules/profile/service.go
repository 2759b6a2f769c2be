package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

const MaxAvatarSize = 5 << 20

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Service struct {
	profiles ProfileRepository
	goals    GoalRepository
	store    ObjectStore
	logger   *zap.Logger
}

func NewService(profiles ProfileRepository, goals GoalRepository, store ObjectStore, logger *zap.Logger) *Service {
	return &Service{
		profiles: profiles,
		goals:    goals,
		store:    store,
		logger:   logger.With(zap.String("component", "profile")),
	}
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) UpdateMe(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.Profile, error) {
	fields := req.fields()
	for k, v := range fields {
		fields[k] = strings.TrimSpace(v.(string))
	}
	if name, ok := fields["full_name"]; ok && name == "" {
		return nil, fmt.Errorf("%w: full_name must not be blank", ErrValidation)
	}
	if len(fields) > 0 {
		if err := s.profiles.Update(ctx, userID, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.GetMe(ctx, userID)
}

// UploadAvatar stores an image of at most MaxAvatarSize bytes and points
// the profile's avatar_url at it. The type is sniffed from the content,
// not taken from the client.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, r io.Reader) (*domain.Profile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrFileTooLarge
	}

	mime := strings.Split(http.DetectContentType(data[:min(len(data), 512)]), ";")[0]
	ext, ok := avatarTypes[mime]
	if !ok {
		return nil, ErrInvalidImage
	}

	if _, err := s.GetMe(ctx, userID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d/%s%s", userID, uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, data, mime)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{"avatar_url": url}); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn("remove orphaned avatar", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("save avatar url: %w", err)
	}
	s.logger.Info("avatar uploaded", zap.Int64("user_id", userID), zap.String("mime", mime), zap.Int("size", len(data)))
	return s.GetMe(ctx, userID)
}

func (s *Service) ListGoals(ctx context.Context, studentID int64) ([]domain.LearningGoal, error) {
	out, err := s.goals.ListByStudent(ctx, studentID)
	if out == nil {
		out = []domain.LearningGoal{}
	}
	return out, err
}

func (s *Service) CreateGoal(ctx context.Context, studentID int64, req CreateGoalRequest) (*domain.LearningGoal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	g := &domain.LearningGoal{
		StudentID:   studentID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		TargetDate:  req.TargetDate,
	}
	if err := s.goals.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *Service) UpdateGoal(ctx context.Context, studentID, goalID int64, req UpdateGoalRequest) (*domain.LearningGoal, error) {
	g, err := s.ownGoal(ctx, studentID, goalID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be blank", ErrValidation)
		}
		g.Title = title
	}
	if req.Description != nil {
		g.Description = strings.TrimSpace(*req.Description)
	}
	if req.TargetDate != nil {
		g.TargetDate = req.TargetDate
	}
	if req.IsCompleted != nil {
		g.IsCompleted = *req.IsCompleted
	}
	if err := s.goals.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("save goal: %w", err)
	}
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, studentID, goalID int64) error {
	if _, err := s.ownGoal(ctx, studentID, goalID); err != nil {
		return err
	}
	if err := s.goals.Delete(ctx, goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ownGoal(ctx context.Context, studentID, goalID int64) (*domain.LearningGoal, error) {
	g, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if g.StudentID != studentID {
		return nil, ErrForbidden
	}
	return g, nil
}
