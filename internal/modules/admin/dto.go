package admin

import "tutorhub/internal/domain"

type SuspendTeacherRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type PendingTeacher struct {
	TeacherID int64           `json:"teacher_id"`
	Profile   *domain.Profile `json:"profile"`
	Bio       string          `json:"bio,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type StatisticsResponse struct {
	TotalStudents   int64  `json:"total_students"`
	TotalTeachers   int64  `json:"total_teachers"`
	PendingTeachers int64  `json:"pending_teachers"`
	TotalBookings   int64  `json:"total_bookings"`
	TodayBookings   int64  `json:"today_bookings"`
	ActivePlans     int64  `json:"active_subscriptions"`
	PaymentsVolume  string `json:"completed_payments_volume"`
}

type UserListFilter struct {
	Role  string `form:"role"`
	Query string `form:"q"` // name/email contains
}
