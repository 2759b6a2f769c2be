package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/database/dbtest"
	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

type invalidations struct {
	mu  sync.Mutex
	ids []int64
}

func (i *invalidations) InvalidateRating(_ context.Context, teacherID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, teacherID)
}

type fixture struct {
	svc     *Service
	repos   *repository.Repositories
	inv     *invalidations
	teacher *domain.Teacher
	student *domain.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.New(dbtest.Open(t))

	tp := &domain.Profile{Email: "t@x.sa", PasswordHash: "x", Role: domain.RoleTeacher}
	require.NoError(t, repos.Profiles.Create(ctx, tp))
	teacher := &domain.Teacher{ProfileID: tp.ID, HourlyRate: decimal.NewFromInt(100), IsActive: true}
	require.NoError(t, repos.Teachers.Create(ctx, teacher))
	student := &domain.Profile{Email: "s@x.sa", PasswordHash: "x", Role: domain.RoleStudent, FullName: "Sara"}
	require.NoError(t, repos.Profiles.Create(ctx, student))

	inv := &invalidations{}
	return &fixture{
		svc:     NewService(repos.Reviews, repos.Bookings, inv, zap.NewNop()),
		repos:   repos,
		inv:     inv,
		teacher: teacher,
		student: student,
	}
}

func (f *fixture) booking(t *testing.T, studentID int64, hour int, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	start := time.Date(2026, 3, 1, hour, 0, 0, 0, time.UTC)
	b := &domain.Booking{
		TeacherID: f.teacher.ID, StudentID: studentID,
		StartTime: start, EndTime: start.Add(time.Hour),
		LessonType: "conversation", Status: status,
	}
	require.NoError(t, f.repos.Bookings.Create(context.Background(), b))
	return b
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.booking(t, f.student.ID, 9, domain.BookingConfirmed)

	rv, err := f.svc.Create(ctx, f.student.ID, CreateReviewRequest{BookingID: b.ID, Rating: 5, Comment: " great "})
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, rv.TeacherID)
	assert.Equal(t, "great", rv.Comment)
	assert.Equal(t, []int64{f.teacher.ID}, f.inv.ids)

	_, err = f.svc.Create(ctx, f.student.ID, CreateReviewRequest{BookingID: b.ID, Rating: 4})
	assert.ErrorIs(t, err, ErrConflict)

	list, err := f.svc.ListByTeacher(ctx, f.teacher.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Student)
	assert.Equal(t, "Sara", list[0].Student.FullName)
}

func TestService_CreateRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := &domain.Profile{Email: "o@x.sa", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, f.repos.Profiles.Create(ctx, other))

	pending := f.booking(t, f.student.ID, 9, domain.BookingPending)
	foreign := f.booking(t, other.ID, 11, domain.BookingConfirmed)

	tests := []struct {
		name string
		req  CreateReviewRequest
		want error
	}{
		{"rating too high", CreateReviewRequest{BookingID: pending.ID, Rating: 6}, ErrInvalidRequest},
		{"rating zero", CreateReviewRequest{BookingID: pending.ID, Rating: 0}, ErrInvalidRequest},
		{"missing booking", CreateReviewRequest{BookingID: 9999, Rating: 5}, ErrNotFound},
		{"someone else's booking", CreateReviewRequest{BookingID: foreign.ID, Rating: 5}, ErrNotFound},
		{"pending booking", CreateReviewRequest{BookingID: pending.ID, Rating: 5}, ErrReviewNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.student.ID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.inv.ids)
}
