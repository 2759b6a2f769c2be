package wallet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/database/dbtest"
	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories, int64) {
	t.Helper()
	repos := repository.New(dbtest.Open(t))
	p := &domain.Profile{Email: "s@x.sa", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, repos.Profiles.Create(context.Background(), p))
	return NewService(repos, zap.NewNop()), repos, p.ID
}

func credit(ctx context.Context, repos *repository.Repositories, userID int64, amount string) error {
	return repos.Transaction(ctx, func(tx *repository.Repositories) error {
		_, _, err := Credit(ctx, tx, Entry{UserID: userID, Amount: decimal.RequireFromString(amount), Type: domain.TransactionDeposit})
		return err
	})
}

func TestLedger_CreditAndDebit(t *testing.T) {
	svc, repos, userID := newTestService(t)
	ctx := context.Background()

	require.NoError(t, credit(ctx, repos, userID, "100"))
	require.NoError(t, credit(ctx, repos, userID, "20.50"))

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		w, txn, err := Debit(ctx, tx, Entry{UserID: userID, Amount: decimal.NewFromInt(60), Type: domain.TransactionLessonPayment, ReferenceID: "42"})
		require.NoError(t, err)
		assert.Equal(t, "60.5", w.Balance.String())
		assert.Equal(t, "-60", txn.Amount.String())
		return nil
	})
	require.NoError(t, err)

	w, err := svc.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("60.50").Equal(w.Balance))

	txns, err := svc.ListTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	rec, err := svc.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent(), "drift %s", rec.Drift)
}

func TestLedger_DebitNeverGoesNegative(t *testing.T) {
	svc, repos, userID := newTestService(t)
	ctx := context.Background()
	require.NoError(t, credit(ctx, repos, userID, "100"))

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		_, _, err := Debit(ctx, tx, Entry{UserID: userID, Amount: decimal.NewFromInt(150), Type: domain.TransactionLessonPayment})
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	w, err := svc.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(w.Balance))

	txns, err := svc.ListTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	_, repos, userID := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, credit(ctx, repos, userID, "0"), ErrInvalidAmount)
	assert.ErrorIs(t, credit(ctx, repos, userID, "-5"), ErrInvalidAmount)
}

func TestService_ReconcileAllReportsDrift(t *testing.T) {
	svc, repos, userID := newTestService(t)
	ctx := context.Background()
	require.NoError(t, credit(ctx, repos, userID, "50"))

	drifted, err := svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifted)

	w, err := repos.Wallets.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, repos.Wallets.UpdateBalance(ctx, w.ID, decimal.NewFromInt(70)))

	drifted, err = svc.ReconcileAll(ctx)
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, "20", drifted[0].Drift.String())
}

func TestHandler_GetMyWalletCreatesLazily(t *testing.T) {
	svc, _, userID := newTestService(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		session.Attach(c, &session.Session{UserID: userID, Role: domain.RoleStudent})
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currency":"SAR"`)
	assert.Contains(t, w.Body.String(), `"balance":"0"`)
}
