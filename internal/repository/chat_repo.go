package repository

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"tutorhub/internal/domain"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListForUser returns every message the user sent or received, newest first.
func (r *MessageRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListThread returns one page of the messages exchanged between a and b.
// Paging counts back from the newest message, so offset 0 is the latest
// page; the page itself is in chronological order.
func (r *MessageRepository) ListThread(ctx context.Context, a, b int64, limit, offset int) ([]domain.Message, error) {
	q := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Order("created_at desc").
		Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []domain.Message
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// MarkRead is mark_messages_as_read: everything senderID sent to userID
// becomes read. It returns the number of rows flipped.
func (r *MessageRepository) MarkRead(ctx context.Context, userID, senderID int64) (int64, error) {
	db := r.db.WithContext(ctx)
	if isPostgres(r.db) {
		var n int64
		err := db.Raw("SELECT mark_messages_as_read(?, ?)", userID, senderID).Scan(&n).Error
		return n, err
	}
	res := db.Model(&domain.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", userID, senderID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Omit("Student").Create(rv).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) ListByTeacher(ctx context.Context, teacherID int64, limit, offset int) ([]domain.Review, error) {
	q := r.db.WithContext(ctx).
		Preload("Student").
		Where("teacher_id = ?", teacherID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []domain.Review
	return out, q.Find(&out).Error
}
