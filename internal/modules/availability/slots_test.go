package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/internal/domain"
)

// 2026-03-01 is a Sunday.
var sunday = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return sunday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func window(day int, start, end string) domain.AvailabilityWindow {
	return domain.AvailabilityWindow{TeacherID: 1, DayOfWeek: day, StartTime: start, EndTime: end, IsRecurring: true}
}

func booking(start, end time.Time, status domain.BookingStatus) domain.Booking {
	return domain.Booking{TeacherID: 1, StartTime: start, EndTime: end, Status: status}
}

func TestComputeSlots_SundayMorning(t *testing.T) {
	windows := []domain.AvailabilityWindow{window(0, "09:00", "10:00")}

	slots := ComputeSlots(sunday, windows, nil)
	require.Len(t, slots, 2)
	assert.Equal(t, at(9, 0), slots[0].StartTime)
	assert.Equal(t, at(9, 30), slots[0].EndTime)
	assert.Equal(t, at(9, 30), slots[1].StartTime)
	assert.True(t, slots[0].IsAvailable)
	assert.True(t, slots[1].IsAvailable)

	slots = ComputeSlots(sunday, windows, []domain.Booking{booking(at(9, 0), at(9, 30), domain.BookingPending)})
	require.Len(t, slots, 2)
	assert.False(t, slots[0].IsAvailable)
	assert.True(t, slots[1].IsAvailable)
}

func TestComputeSlots_NoMatchingWindow(t *testing.T) {
	windows := []domain.AvailabilityWindow{window(1, "09:00", "12:00"), window(6, "09:00", "12:00")}

	slots := ComputeSlots(sunday, windows, nil)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	assert.Empty(t, ComputeSlots(sunday, nil, nil))
}

func TestComputeSlots_EverySlotIsThirtyMinutes(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"exact hour", "09:00", "10:00", 2},
		{"remainder dropped", "09:00", "10:15", 2},
		{"remainder just short", "09:00", "10:29", 2},
		{"shorter than a slot", "09:00", "09:20", 0},
		{"with seconds", "14:00:00", "15:30:00", 3},
		{"inverted", "12:00", "09:00", 0},
		{"empty", "10:00", "10:00", 0},
		{"garbage", "nine", "10:00", 0},
		{"until midnight", "23:00", "24:00", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ComputeSlots(sunday, []domain.AvailabilityWindow{window(0, tt.start, tt.end)}, nil)
			require.Len(t, slots, tt.want)
			for _, s := range slots {
				assert.Equal(t, SlotLength, s.EndTime.Sub(s.StartTime))
			}
		})
	}
}

func TestComputeSlots_OverlapBoundaries(t *testing.T) {
	windows := []domain.AvailabilityWindow{window(0, "09:00", "11:00")}

	tests := []struct {
		name string
		b    domain.Booking
		want []bool
	}{
		{"ends at slot start", booking(at(8, 30), at(9, 0), domain.BookingConfirmed), []bool{true, true, true, true}},
		{"starts at slot end", booking(at(11, 0), at(12, 0), domain.BookingConfirmed), []bool{true, true, true, true}},
		{"partial overlap", booking(at(9, 15), at(9, 45), domain.BookingConfirmed), []bool{false, false, true, true}},
		{"covers window", booking(at(8, 0), at(12, 0), domain.BookingPending), []bool{false, false, false, false}},
		{"cancelled never blocks", booking(at(9, 0), at(11, 0), domain.BookingCancelled), []bool{true, true, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ComputeSlots(sunday, windows, []domain.Booking{tt.b})
			got := make([]bool, 0, len(slots))
			for _, s := range slots {
				got = append(got, s.IsAvailable)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeSlots_SortedAcrossWindows(t *testing.T) {
	windows := []domain.AvailabilityWindow{
		window(0, "15:00", "16:00"),
		window(0, "08:00", "09:00"),
	}

	slots := ComputeSlots(sunday, windows, nil)
	require.Len(t, slots, 4)
	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].StartTime.Before(slots[i-1].StartTime))
	}
	assert.Equal(t, at(8, 0), slots[0].StartTime)
}

func TestComputeSlots_UsesDateLocation(t *testing.T) {
	riyadh, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, riyadh)

	slots := ComputeSlots(day, []domain.AvailabilityWindow{window(0, "09:00", "09:30")}, []domain.Booking{
		booking(time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC), domain.BookingPending),
	})
	require.Len(t, slots, 1)
	assert.Equal(t, riyadh, slots[0].StartTime.Location())
	assert.False(t, slots[0].IsAvailable)
}

func TestComputeSlots_DaylightSavingDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		day  time.Time
	}{
		{"spring forward", time.Date(2026, 3, 8, 0, 0, 0, 0, ny)},
		{"fall back", time.Date(2026, 11, 1, 0, 0, 0, 0, ny)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, time.Sunday, tt.day.Weekday())

			slots := ComputeSlots(tt.day, []domain.AvailabilityWindow{window(0, "09:00", "10:00")}, nil)
			require.Len(t, slots, 2)

			y, m, d := tt.day.Date()
			assert.True(t, slots[0].StartTime.Equal(time.Date(y, m, d, 9, 0, 0, 0, ny)))
			assert.True(t, slots[1].StartTime.Equal(time.Date(y, m, d, 9, 30, 0, 0, ny)))
			assert.True(t, slots[1].EndTime.Equal(time.Date(y, m, d, 10, 0, 0, 0, ny)))
			assert.Equal(t, 9, slots[0].StartTime.In(ny).Hour())
		})
	}
}
