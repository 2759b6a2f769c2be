package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrStale     = errors.New("record changed concurrently")
)

// Repositories groups the gorm repositories over one connection or
// transaction.
type Repositories struct {
	db *gorm.DB

	Profiles       *ProfileRepository
	Goals          *LearningGoalRepository
	Teachers       *TeacherRepository
	Availability   *AvailabilityRepository
	Bookings       *BookingRepository
	Wallets        *WalletRepository
	Payments       *PaymentRepository
	PaymentMethods *PaymentMethodRepository
	Subscriptions  *SubscriptionRepository
	Messages       *MessageRepository
	Reviews        *ReviewRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		Profiles:       NewProfileRepository(db),
		Goals:          NewLearningGoalRepository(db),
		Teachers:       NewTeacherRepository(db),
		Availability:   NewAvailabilityRepository(db),
		Bookings:       NewBookingRepository(db),
		Wallets:        NewWalletRepository(db),
		Payments:       NewPaymentRepository(db),
		PaymentMethods: NewPaymentMethodRepository(db),
		Subscriptions:  NewSubscriptionRepository(db),
		Messages:       NewMessageRepository(db),
		Reviews:        NewReviewRepository(db),
	}
}

func (r *Repositories) DB() *gorm.DB { return r.db }

// Transaction runs fn with repositories bound to a single database
// transaction. Any error returned by fn rolls everything back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// IsUniqueViolation recognises unique-constraint failures from both
// postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
