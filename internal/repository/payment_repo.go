package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorhub/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentRecord{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.PaymentRecord, error) {
	var out []domain.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// FindLessonPayment returns the completed lesson payment recorded for the
// booking, or ErrNotFound.
func (r *PaymentRepository) FindLessonPayment(ctx context.Context, userID, bookingID int64) (*domain.PaymentRecord, error) {
	var rows []domain.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND payment_type = ? AND status = ?", userID, domain.PaymentLesson, domain.PaymentCompleted).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ref := strconv.FormatInt(bookingID, 10)
	for i := range rows {
		if rows[i].MetadataString("booking_id") == ref {
			return &rows[i], nil
		}
	}
	return nil, ErrNotFound
}

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *domain.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *PaymentMethodRepository) ListByUser(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&out).Error
	return out, err
}

func (r *PaymentMethodRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.PaymentMethod{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// SetDefault makes id the user's only default method.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, userID int64, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.PaymentMethod{}).
		Where("user_id = ? AND id <> ?", userID, id).
		Update("is_default", false).Error; err != nil {
		return err
	}
	res := db.Model(&domain.PaymentMethod{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.PaymentMethod{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
