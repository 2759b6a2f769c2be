package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorhub/internal/domain"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	w, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	w = &domain.Wallet{UserID: userID, Balance: decimal.Zero}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		if IsUniqueViolation(err) {
			return r.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return w, nil
}

// GetForUpdate locks the user's wallet row, creating it when missing.
// Only meaningful inside a transaction. The insert skips on conflict so a
// concurrent creator never aborts the surrounding postgres transaction.
func (r *WalletRepository) GetForUpdate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	tx := r.db.WithContext(ctx)
	locked := func() (*domain.Wallet, error) {
		var w domain.Wallet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&w).Error
		return &w, err
	}

	w, err := locked()
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := domain.Wallet{UserID: userID, Balance: decimal.Zero}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return locked()
}

func (r *WalletRepository) UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&domain.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
}

func (r *WalletRepository) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// LedgerSum adds up the wallet's transactions.
func (r *WalletRepository) LedgerSum(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("wallet_id = ?", walletID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

func (r *WalletRepository) ListAll(ctx context.Context) ([]domain.Wallet, error) {
	var out []domain.Wallet
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&out).Error
	return out, err
}
