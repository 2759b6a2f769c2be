package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

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

func init() {
	gin.SetMode(gin.TestMode)
}

type invalidations struct {
	ids []int64
}

func (i *invalidations) InvalidateRating(_ context.Context, teacherID int64) {
	i.ids = append(i.ids, teacherID)
}

type fixture struct {
	svc   *Service
	repos *repository.Repositories
	inv   *invalidations
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.New(dbtest.Open(t))
	inv := &invalidations{}
	return &fixture{svc: NewService(repos, inv, zap.NewNop()), repos: repos, inv: inv}
}

func (f *fixture) teacher(t *testing.T, email string, active bool) *domain.Teacher {
	t.Helper()
	ctx := context.Background()
	p := &domain.Profile{Email: email, PasswordHash: "x", Role: domain.RoleTeacher, FullName: "Teacher " + email}
	require.NoError(t, f.repos.Profiles.Create(ctx, p))
	tc := &domain.Teacher{ProfileID: p.ID, HourlyRate: decimal.NewFromInt(100), Currency: "SAR", IsActive: active}
	require.NoError(t, f.repos.Teachers.Create(ctx, tc))
	return tc
}

func TestService_ApproveTeacher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.teacher(t, "p@x.sa", false)

	got, err := f.svc.ApproveTeacher(ctx, pending.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, []int64{pending.ID}, f.inv.ids)

	stored, err := f.repos.Teachers.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	_, err = f.svc.ApproveTeacher(ctx, pending.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyActive)

	_, err = f.svc.ApproveTeacher(ctx, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SuspendTeacherRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active := f.teacher(t, "a@x.sa", true)

	_, err := f.svc.SuspendTeacher(ctx, active.ID, 1, "   ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	got, err := f.svc.SuspendTeacher(ctx, active.ID, 1, "fake credentials")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	pending, total, err := f.svc.ListPendingTeachers(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, active.ID, pending[0].TeacherID)
	require.NotNil(t, pending[0].Profile)
	assert.Equal(t, "a@x.sa", pending[0].Profile.Email)
}

func TestService_GetStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active := f.teacher(t, "a@x.sa", true)
	f.teacher(t, "p@x.sa", false)

	student := &domain.Profile{Email: "s@x.sa", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, f.repos.Profiles.Create(ctx, student))

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	require.NoError(t, f.repos.Bookings.Create(ctx, &domain.Booking{
		TeacherID: active.ID, StudentID: student.ID,
		StartTime: start, EndTime: start.Add(time.Hour),
		LessonType: "conversation", Amount: decimal.NewFromInt(100), Status: domain.BookingConfirmed,
	}))
	for _, amount := range []string{"100.00", "49.50"} {
		require.NoError(t, f.repos.Payments.Create(ctx, &domain.PaymentRecord{
			UserID: student.ID, Amount: decimal.RequireFromString(amount), Currency: "SAR",
			PaymentType: domain.PaymentWalletRecharge, Status: domain.PaymentCompleted,
		}))
	}

	st, err := f.svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalStudents)
	assert.Equal(t, int64(1), st.TotalTeachers)
	assert.Equal(t, int64(1), st.PendingTeachers)
	assert.Equal(t, int64(1), st.TotalBookings)
	assert.Equal(t, int64(1), st.TodayBookings)
	assert.Equal(t, "149.50", st.PaymentsVolume)
}

func TestService_ListUsersFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.teacher(t, "kim@x.sa", true)
	require.NoError(t, f.repos.Profiles.Create(ctx, &domain.Profile{Email: "sara@x.sa", PasswordHash: "x", Role: domain.RoleStudent, FullName: "Sara"}))

	users, total, err := f.svc.ListUsers(ctx, UserListFilter{Role: "student"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "sara@x.sa", users[0].Email)

	users, _, err = f.svc.ListUsers(ctx, UserListFilter{Query: "KIM"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleTeacher, users[0].Role)
}

func TestHandler_SuspendTeacher(t *testing.T) {
	f := newFixture(t)
	active := f.teacher(t, "a@x.sa", true)

	r := gin.New()
	rg := r.Group("/api/v1", func(c *gin.Context) {
		session.Attach(c, &session.Session{UserID: 1, Role: domain.RoleAdmin})
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(rg)

	path := func(id int64, action string) string {
		return "/api/v1/admin/teachers/" + strconv.FormatInt(id, 10) + "/" + action
	}
	do := func(url, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/api/v1/admin/teachers/9999/suspend", `{"reason":"spam"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(path(active.ID, "suspend"), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(path(active.ID, "suspend"), `{"reason":"spam"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Teacher domain.Teacher `json:"teacher"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.False(t, body.Data.Teacher.IsActive)

	w = do(path(active.ID, "approve"), ``)
	assert.Equal(t, http.StatusOK, w.Code)
}
