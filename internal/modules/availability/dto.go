package availability

import (
	"time"

	"tutorhub/internal/domain"
)

type CreateWindowRequest struct {
	DayOfWeek   *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
	EndTime     string `json:"end_time" validate:"required,hhmm"`
	IsRecurring *bool  `json:"is_recurring"`
}

type SlotsResponse struct {
	TeacherID int64         `json:"teacher_id"`
	Date      string        `json:"date"`
	Timezone  string        `json:"timezone"`
	Slots     []domain.Slot `json:"slots"`
	Available int           `json:"available"`
}

func newSlotsResponse(teacherID int64, day time.Time, slots []domain.Slot) SlotsResponse {
	free := 0
	for _, s := range slots {
		if s.IsAvailable {
			free++
		}
	}
	return SlotsResponse{
		TeacherID: teacherID,
		Date:      day.Format(dateLayout),
		Timezone:  day.Location().String(),
		Slots:     slots,
		Available: free,
	}
}
