package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/database/dbtest"
	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories, int64) {
	t.Helper()
	repos := repository.New(dbtest.Open(t))
	p := &domain.Profile{Email: "s@x.sa", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, repos.Profiles.Create(context.Background(), p))
	return NewService(repos, zap.NewNop()), repos, p.ID
}

func activate(t *testing.T, repos *repository.Repositories, userID int64, plan string, start time.Time) *domain.Subscription {
	t.Helper()
	p, err := PlanByName(plan)
	require.NoError(t, err)
	var sub *domain.Subscription
	require.NoError(t, repos.Transaction(context.Background(), func(tx *repository.Repositories) error {
		var err error
		sub, err = Activate(context.Background(), tx, userID, p, start)
		return err
	}))
	return sub
}

func TestPlanByName(t *testing.T) {
	for _, name := range []string{"monthly", "quarterly", "yearly"} {
		p, err := PlanByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.True(t, p.Price.IsPositive())
	}
	_, err := PlanByName("weekly")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestActivate_AtMostOneActive(t *testing.T) {
	svc, repos, userID := newTestService(t)
	ctx := context.Background()
	jan := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	first := activate(t, repos, userID, "monthly", jan)
	assert.Equal(t, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC), first.EndDate)

	second := activate(t, repos, userID, "quarterly", jan.AddDate(0, 0, 10))
	assert.Equal(t, jan.AddDate(0, 3, 10), second.EndDate)

	active, err := svc.GetActive(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	statuses := map[string]domain.SubscriptionStatus{}
	for _, s := range history {
		statuses[s.PlanName] = s.Status
	}
	assert.Equal(t, domain.SubscriptionCancelled, statuses["monthly"])
	assert.Equal(t, domain.SubscriptionActive, statuses["quarterly"])
}

func TestService_CancelAndExpire(t *testing.T) {
	svc, repos, userID := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Cancel(ctx, userID), ErrNoActiveSubscription)

	activate(t, repos, userID, "monthly", time.Now().AddDate(0, -2, 0))
	n, err := svc.ExpireOld(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := svc.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, active)

	activate(t, repos, userID, "yearly", time.Now())
	require.NoError(t, svc.Cancel(ctx, userID))
	active, err = svc.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, active)
}
