package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"tutorhub/internal/domain"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// GetByIDs returns the profiles keyed by id; missing ids are simply absent.
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Profile, error) {
	out := make(map[int64]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProfileRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type LearningGoalRepository struct {
	db *gorm.DB
}

func NewLearningGoalRepository(db *gorm.DB) *LearningGoalRepository {
	return &LearningGoalRepository{db: db}
}

func (r *LearningGoalRepository) ListByStudent(ctx context.Context, studentID int64) ([]domain.LearningGoal, error) {
	var goals []domain.LearningGoal
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("is_completed asc, created_at desc").
		Find(&goals).Error
	return goals, err
}

func (r *LearningGoalRepository) Create(ctx context.Context, g *domain.LearningGoal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *LearningGoalRepository) GetByID(ctx context.Context, id int64) (*domain.LearningGoal, error) {
	var g domain.LearningGoal
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *LearningGoalRepository) Save(ctx context.Context, g *domain.LearningGoal) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *LearningGoalRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.LearningGoal{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
