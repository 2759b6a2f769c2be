package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
)

func newRouter(h *Handler, sess *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		session.Attach(c, sess)
		c.Next()
	})
	h.RegisterRoutes(api)
	return r
}

func TestHandler_CreateBooking(t *testing.T) {
	svc, bookings, teachers, _ := newTestService()
	teachers.On("GetByID", mock.Anything, int64(5)).Return(kim, nil)
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(repository.ErrDuplicate).Once()

	r := newRouter(NewHandler(svc), &session.Session{UserID: 7, Role: domain.RoleStudent})
	body := `{"teacher_id":5,"start_time":"2026-03-01T09:00:00+03:00","end_time":"2026-03-01T10:00:00+03:00","lesson_type":"conversation"}`

	post := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Booking domain.Booking `json:"booking"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.Data.Booking.StudentID)
	assert.Equal(t, domain.BookingPending, resp.Data.Booking.Status)
	assert.Equal(t, "120", resp.Data.Booking.Amount.String())

	w = post()
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_CONFLICT")
}

func TestHandler_CreateBooking_RejectsMissingFields(t *testing.T) {
	svc, _, _, _ := newTestService()
	r := newRouter(NewHandler(svc), &session.Session{UserID: 7, Role: domain.RoleStudent})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(`{"teacher_id":5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_GetBooking_Forbidden(t *testing.T) {
	svc, bookings, teachers, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{ID: 1, TeacherID: 5, StudentID: 7}, nil)
	teachers.On("GetByID", mock.Anything, int64(5)).Return(kim, nil)

	r := newRouter(NewHandler(svc), &session.Session{UserID: 8, Role: domain.RoleStudent})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil).WithContext(context.Background()))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
