package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

// AddPaymentMethod stores a tagged payment method. The user's first method
// becomes the default.
func (s *Service) AddPaymentMethod(ctx context.Context, userID int64, req AddPaymentMethodRequest) (*domain.PaymentMethod, error) {
	details, err := domain.DecodeMethodDetails(req.Type, req.Details)
	if err != nil {
		return nil, err
	}
	typ, raw, err := domain.EncodeMethodDetails(details)
	if err != nil {
		return nil, err
	}

	m := &domain.PaymentMethod{UserID: userID, Type: typ, Details: raw}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		n, err := tx.PaymentMethods.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		m.IsDefault = req.IsDefault || n == 0
		if err := tx.PaymentMethods.Create(ctx, m); err != nil {
			return err
		}
		if m.IsDefault && n > 0 {
			return tx.PaymentMethods.SetDefault(ctx, userID, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListPaymentMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	out, err := s.repos.PaymentMethods.ListByUser(ctx, userID)
	if out == nil {
		out = []domain.PaymentMethod{}
	}
	return out, err
}

func (s *Service) SetDefaultPaymentMethod(ctx context.Context, userID int64, id uuid.UUID) error {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.PaymentMethods.SetDefault(ctx, userID, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMethodNotFound
	}
	return err
}

func (s *Service) DeletePaymentMethod(ctx context.Context, userID int64, id uuid.UUID) error {
	err := s.repos.PaymentMethods.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMethodNotFound
	}
	return err
}
