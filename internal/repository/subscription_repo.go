package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tutorhub/internal/domain"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetActiveByUser returns nil, nil when the user has no active subscription.
func (r *SubscriptionRepository) GetActiveByUser(ctx context.Context, userID int64) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.SubscriptionActive).
		Order("created_at desc").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	var out []domain.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// CancelActive flips the user's active rows to cancelled and reports how
// many changed.
func (r *SubscriptionRepository) CancelActive(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("user_id = ? AND status = ?", userID, domain.SubscriptionActive).
		Updates(map[string]any{
			"status":       domain.SubscriptionCancelled,
			"cancelled_at": at.UTC(),
		})
	return res.RowsAffected, res.Error
}

// ExpireEndedBefore marks active subscriptions whose end date passed.
func (r *SubscriptionRepository) ExpireEndedBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("status = ? AND end_date < ?", domain.SubscriptionActive, now.UTC()).
		Update("status", domain.SubscriptionExpired)
	return res.RowsAffected, res.Error
}
