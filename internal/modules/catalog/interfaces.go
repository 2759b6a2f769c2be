package catalog

import (
	"context"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

type TeacherRepository interface {
	List(ctx context.Context, f repository.TeacherFilter) ([]domain.TeacherSummary, error)
	GetByID(ctx context.Context, id int64) (*domain.Teacher, error)
	GetByProfileID(ctx context.Context, profileID int64) (*domain.Teacher, error)
	Create(ctx context.Context, t *domain.Teacher) error
	Save(ctx context.Context, t *domain.Teacher) error
	Rating(ctx context.Context, teacherID int64) (*domain.TeacherRating, error)
	LessonTypes(ctx context.Context) ([]domain.LessonType, error)
}
