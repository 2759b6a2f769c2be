package availability

import (
	"sort"
	"time"

	"tutorhub/internal/domain"
)

// SlotLength is the granularity teachers are booked in.
const SlotLength = 30 * time.Minute

// ComputeSlots slices the windows that fall on date's weekday into
// 30-minute slots and marks each one unavailable when a live booking
// overlaps it. Intervals are half-open, so a booking ending at 09:30 does
// not block the 09:30 slot. A trailing remainder shorter than SlotLength
// is dropped.
func ComputeSlots(date time.Time, windows []domain.AvailabilityWindow, bookings []domain.Booking) []domain.Slot {
	slots := make([]domain.Slot, 0)
	weekday := int(date.Weekday())
	loc := date.Location()
	y, m, d := date.Date()

	for _, w := range windows {
		if w.DayOfWeek != weekday {
			continue
		}
		startMin, ok := parseClock(w.StartTime)
		if !ok {
			continue
		}
		endMin, ok := parseClock(w.EndTime)
		if !ok || endMin <= startMin {
			continue
		}

		// Wall-clock construction keeps 09:00 at 09:00 on DST transition days.
		windowStart := time.Date(y, m, d, startMin/60, startMin%60, 0, 0, loc)
		windowEnd := time.Date(y, m, d, endMin/60, endMin%60, 0, 0, loc)

		for s := windowStart; !s.Add(SlotLength).After(windowEnd); s = s.Add(SlotLength) {
			e := s.Add(SlotLength)
			slots = append(slots, domain.Slot{
				StartTime:   s,
				EndTime:     e,
				IsAvailable: !overlapsAny(s, e, bookings),
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots
}

func overlapsAny(s, e time.Time, bookings []domain.Booking) bool {
	for _, b := range bookings {
		if b.Status == domain.BookingCancelled {
			continue
		}
		if s.Before(b.EndTime) && e.After(b.StartTime) {
			return true
		}
	}
	return false
}

// parseClock reads "HH:MM" or "HH:MM:SS" into minutes after midnight.
// Seconds are ignored.
func parseClock(v string) (int, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	if v == "24:00" || v == "24:00:00" {
		return 24 * 60, true
	}
	return 0, false
}
