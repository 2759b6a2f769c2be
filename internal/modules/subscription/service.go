package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

var ErrNoActiveSubscription = errors.New("no active subscription")

// Activate ends the user's current active subscription, if any, and starts
// a new one on plan from start. Call it with transaction-bound
// repositories so both writes commit together.
func Activate(ctx context.Context, tx *repository.Repositories, userID int64, plan domain.Plan, start time.Time) (*domain.Subscription, error) {
	start = start.UTC()
	if _, err := tx.Subscriptions.CancelActive(ctx, userID, start); err != nil {
		return nil, fmt.Errorf("cancel previous subscription: %w", err)
	}

	sub := &domain.Subscription{
		UserID:    userID,
		PlanName:  plan.Name,
		Price:     plan.Price,
		Status:    domain.SubscriptionActive,
		StartDate: start,
		EndDate:   start.AddDate(0, plan.DurationMonths, 0),
	}
	if err := tx.Subscriptions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

type Service struct {
	repos  *repository.Repositories
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repos *repository.Repositories, logger *zap.Logger) *Service {
	return &Service{repos: repos, now: time.Now, logger: logger}
}

func (s *Service) ListPlans() []domain.Plan {
	return Plans()
}

// GetActive returns nil without error when the user has no subscription.
func (s *Service) GetActive(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return s.repos.Subscriptions.GetActiveByUser(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	out, err := s.repos.Subscriptions.ListByUser(ctx, userID)
	if out == nil {
		out = []domain.Subscription{}
	}
	return out, err
}

func (s *Service) Cancel(ctx context.Context, userID int64) error {
	n, err := s.repos.Subscriptions.CancelActive(ctx, userID, s.now())
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoActiveSubscription
	}
	s.logger.Info("subscription cancelled", zap.Int64("user_id", userID))
	return nil
}

// ExpireOld flips active subscriptions whose end date has passed.
func (s *Service) ExpireOld(ctx context.Context) (int64, error) {
	n, err := s.repos.Subscriptions.ExpireEndedBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("subscriptions expired", zap.Int64("count", n))
	}
	return n, nil
}
