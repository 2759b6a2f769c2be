package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

type Service struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewService(repos *repository.Repositories, logger *zap.Logger) *Service {
	return &Service{repos: repos, logger: logger}
}

func (s *Service) GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return s.repos.Wallets.GetOrCreate(ctx, userID)
}

func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	w, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.repos.Wallets.ListTransactions(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nil
}

// Reconciliation compares a stored balance with its ledger.
type Reconciliation struct {
	WalletID  uuid.UUID       `json:"wallet_id"`
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	Drift     decimal.Decimal `json:"drift"`
}

func (r Reconciliation) Consistent() bool {
	return r.Drift.IsZero()
}

func (s *Service) Reconcile(ctx context.Context, userID int64) (*Reconciliation, error) {
	w, err := s.repos.Wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, w)
}

// ReconcileAll checks every wallet and returns those whose balance
// differs from the sum of their transactions.
func (s *Service) ReconcileAll(ctx context.Context) ([]Reconciliation, error) {
	wallets, err := s.repos.Wallets.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var drifted []Reconciliation
	for i := range wallets {
		rec, err := s.reconcile(ctx, &wallets[i])
		if err != nil {
			return nil, err
		}
		if !rec.Consistent() {
			s.logger.Warn("wallet drift detected",
				zap.String("wallet_id", rec.WalletID.String()),
				zap.Int64("user_id", rec.UserID),
				zap.String("balance", rec.Balance.String()),
				zap.String("ledger_sum", rec.LedgerSum.String()),
			)
			drifted = append(drifted, *rec)
		}
	}
	return drifted, nil
}

func (s *Service) reconcile(ctx context.Context, w *domain.Wallet) (*Reconciliation, error) {
	sum, err := s.repos.Wallets.LedgerSum(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger sum for wallet %s: %w", w.ID, err)
	}
	return &Reconciliation{
		WalletID:  w.ID,
		UserID:    w.UserID,
		Balance:   w.Balance,
		LedgerSum: sum,
		Drift:     w.Balance.Sub(sum),
	}, nil
}
