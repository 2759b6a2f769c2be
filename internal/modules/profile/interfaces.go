package profile

import (
	"context"

	"tutorhub/internal/domain"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
}

type GoalRepository interface {
	ListByStudent(ctx context.Context, studentID int64) ([]domain.LearningGoal, error)
	Create(ctx context.Context, g *domain.LearningGoal) error
	GetByID(ctx context.Context, id int64) (*domain.LearningGoal, error)
	Save(ctx context.Context, g *domain.LearningGoal) error
	Delete(ctx context.Context, id int64) error
}

// ObjectStore persists uploaded files and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
