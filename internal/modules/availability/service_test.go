package availability

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/database/dbtest"
	"tutorhub/internal/domain"
	"tutorhub/internal/metrics"
	"tutorhub/internal/repository"
)

func setup(t *testing.T, loc *time.Location) (*Service, *repository.Repositories, *domain.Teacher, *domain.Profile) {
	t.Helper()
	repos := repository.New(dbtest.Open(t))
	ctx := context.Background()

	tp := &domain.Profile{Email: "kim@x.sa", PasswordHash: "x", Role: domain.RoleTeacher, FullName: "Kim"}
	require.NoError(t, repos.Profiles.Create(ctx, tp))
	teacher := &domain.Teacher{ProfileID: tp.ID, HourlyRate: decimal.NewFromInt(100), IsActive: true}
	require.NoError(t, repos.Teachers.Create(ctx, teacher))

	sp := &domain.Profile{Email: "s@x.sa", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, repos.Profiles.Create(ctx, sp))

	svc := NewService(repos.Availability, repos.Bookings, repos.Teachers, loc, metrics.NewUnregistered(), zap.NewNop())
	return svc, repos, teacher, sp
}

func TestService_GetSlotsInRiyadh(t *testing.T) {
	riyadh, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)
	svc, repos, teacher, student := setup(t, riyadh)
	ctx := context.Background()

	nine := 9
	_, err = svc.AddWindow(ctx, teacher.ProfileID, CreateWindowRequest{DayOfWeek: &nine, StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrValidation)

	sun := 0
	_, err = svc.AddWindow(ctx, teacher.ProfileID, CreateWindowRequest{DayOfWeek: &sun, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	// 09:00 Riyadh is 06:00 UTC.
	start := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Bookings.Create(ctx, &domain.Booking{
		TeacherID: teacher.ID, StudentID: student.ID,
		StartTime: start, EndTime: start.Add(30 * time.Minute),
		LessonType: "trial", Status: domain.BookingPending,
	}))

	out, err := svc.GetSlots(ctx, teacher.ID, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, out.Slots, 2)
	assert.False(t, out.Slots[0].IsAvailable)
	assert.True(t, out.Slots[1].IsAvailable)
	assert.Equal(t, 1, out.Available)
	assert.Equal(t, "Asia/Riyadh", out.Timezone)

	monday, err := svc.GetSlots(ctx, teacher.ID, "2026-03-02")
	require.NoError(t, err)
	assert.Empty(t, monday.Slots)
}

func TestService_GetSlotsErrors(t *testing.T) {
	svc, _, teacher, _ := setup(t, time.UTC)
	ctx := context.Background()

	_, err := svc.GetSlots(ctx, teacher.ID, "01/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.GetSlots(ctx, teacher.ID+100, "2026-03-01")
	assert.ErrorIs(t, err, ErrTeacherMissing)
}

func TestService_DeleteWindowChecksOwner(t *testing.T) {
	svc, repos, teacher, student := setup(t, time.UTC)
	ctx := context.Background()

	sun := 0
	w, err := svc.AddWindow(ctx, teacher.ProfileID, CreateWindowRequest{DayOfWeek: &sun, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	other := &domain.Profile{Email: "lee@x.sa", PasswordHash: "x", Role: domain.RoleTeacher}
	require.NoError(t, repos.Profiles.Create(ctx, other))
	require.NoError(t, repos.Teachers.Create(ctx, &domain.Teacher{ProfileID: other.ID}))

	assert.ErrorIs(t, svc.DeleteWindow(ctx, other.ID, w.ID), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteWindow(ctx, student.ID, w.ID), ErrTeacherMissing)
	assert.ErrorIs(t, svc.DeleteWindow(ctx, teacher.ProfileID, w.ID+50), ErrWindowNotFound)
	require.NoError(t, svc.DeleteWindow(ctx, teacher.ProfileID, w.ID))

	left, err := svc.ListWindows(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
