package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorhub/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts b. A second live booking at the same teacher start time
// fails with ErrDuplicate.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	if err := r.db.WithContext(ctx).Omit("Teacher").Create(b).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// GetByIDForUpdate locks the booking row for the rest of the transaction.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// ListOverlapping returns live bookings of the teacher intersecting [from, to).
func (r *BookingRepository) ListOverlapping(ctx context.Context, teacherID int64, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Where("status <> ?", domain.BookingCancelled).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC()).
		Order("start_time asc").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByStudent(ctx context.Context, studentID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Teacher.Profile").
		Where("student_id = ?", studentID).
		Order("start_time desc").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("start_time desc").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	fields := map[string]any{"status": status}
	if status == domain.BookingCancelled {
		fields["cancelled_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus moves the booking from one status to another and fails
// with ErrStale when the row is no longer in the expected status.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	fields := map[string]any{"status": to}
	if to == domain.BookingCancelled {
		fields["cancelled_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.AvailabilityWindow, error) {
	var out []domain.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("day_of_week asc, start_time asc").
		Find(&out).Error
	return out, err
}

func (r *AvailabilityRepository) Create(ctx context.Context, w *domain.AvailabilityWindow) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	var w domain.AvailabilityWindow
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.AvailabilityWindow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
