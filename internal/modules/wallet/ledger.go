package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Entry describes one ledger movement. Amount is always positive; the
// direction comes from Credit or Debit.
type Entry struct {
	UserID      int64
	Amount      decimal.Decimal
	Type        domain.TransactionType
	ReferenceID string
	Description string
}

// Credit adds e.Amount to the user's wallet and appends the matching
// ledger row. tx must be bound to an open transaction so the wallet row
// stays locked until commit.
func Credit(ctx context.Context, tx *repository.Repositories, e Entry) (*domain.Wallet, *domain.Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	return apply(ctx, tx, e, e.Amount)
}

// Debit subtracts e.Amount from the user's wallet. It never drives the
// balance below zero.
func Debit(ctx context.Context, tx *repository.Repositories, e Entry) (*domain.Wallet, *domain.Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	return apply(ctx, tx, e, e.Amount.Neg())
}

func apply(ctx context.Context, tx *repository.Repositories, e Entry, delta decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	w, err := tx.Wallets.GetForUpdate(ctx, e.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock wallet: %w", err)
	}

	balance := w.Balance.Add(delta)
	if balance.IsNegative() {
		return nil, nil, ErrInsufficientFunds
	}
	if err := tx.Wallets.UpdateBalance(ctx, w.ID, balance); err != nil {
		return nil, nil, fmt.Errorf("update balance: %w", err)
	}
	w.Balance = balance

	t := &domain.Transaction{
		WalletID:    w.ID,
		Amount:      delta,
		Type:        e.Type,
		ReferenceID: e.ReferenceID,
		Description: e.Description,
	}
	if err := tx.Wallets.InsertTransaction(ctx, t); err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}
	return w, t, nil
}
