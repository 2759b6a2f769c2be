package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tutorhub/internal/domain"
	"tutorhub/internal/metrics"
	"tutorhub/internal/modules/subscription"
	"tutorhub/internal/modules/wallet"
	"tutorhub/internal/repository"
)

type Service struct {
	repos      *repository.Repositories
	authorizer Authorizer
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repos *repository.Repositories, authorizer Authorizer, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repos:      repos,
		authorizer: authorizer,
		metrics:    m,
		logger:     logger.With(zap.String("component", "payment")),
		now:        time.Now,
	}
}

// ProcessPayment records a payment, asks the authorizer, and applies the
// side effects of an approved payment. The status change and its wallet
// or subscription effects commit in one transaction. A declined payment
// returns the failed record together with ErrPaymentDeclined.
func (s *Service) ProcessPayment(ctx context.Context, userID int64, req PaymentRequest) (*domain.PaymentRecord, error) {
	if !req.PaymentType.Valid() {
		return nil, ErrInvalidPaymentType
	}

	if !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, ErrInvalidAmount
	}

	var plan domain.Plan
	if req.PaymentType == domain.PaymentSubscription {
		p, err := subscription.PlanByName(req.PlanName())
		if err != nil {
			return nil, err
		}
		if req.Amount.IsZero() {
			req.Amount = p.Price
		} else if !req.Amount.Equal(p.Price) {
			return nil, ErrAmountMismatch
		}
		plan = p
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var method *domain.PaymentMethod
	if req.PaymentMethodID != nil {
		m, err := s.repos.PaymentMethods.GetByID(ctx, *req.PaymentMethodID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrMethodNotFound
			}
			return nil, err
		}
		if m.UserID != userID {
			return nil, ErrMethodNotFound
		}
		method = m
	}

	meta, err := encodeMetadata(req.Metadata)
	if err != nil {
		return nil, ErrValidation
	}

	record := &domain.PaymentRecord{
		UserID:          userID,
		Amount:          req.Amount.Round(2),
		Currency:        domain.DefaultCurrency,
		PaymentType:     req.PaymentType,
		Status:          domain.PaymentPending,
		PaymentMethodID: req.PaymentMethodID,
		Metadata:        meta,
	}
	if err := s.repos.Payments.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	approved, authErr := s.authorizer.Authorize(ctx, AuthorizationRequest{
		PaymentID: record.ID,
		UserID:    userID,
		Amount:    record.Amount,
		Currency:  record.Currency,
		Type:      record.PaymentType,
		Method:    method,
	})
	if authErr != nil || !approved {
		return s.decline(ctx, record, authErr)
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Payments.UpdateStatus(ctx, record.ID, domain.PaymentCompleted); err != nil {
			return err
		}
		switch record.PaymentType {
		case domain.PaymentWalletRecharge:
			_, _, err := wallet.Credit(ctx, tx, wallet.Entry{
				UserID:      userID,
				Amount:      record.Amount,
				Type:        domain.TransactionDeposit,
				ReferenceID: record.ID.String(),
				Description: "Wallet recharge",
			})
			return err
		case domain.PaymentSubscription:
			_, err := subscription.Activate(ctx, tx, userID, plan, s.now())
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error("apply approved payment failed",
			zap.String("payment_id", record.ID.String()),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		if uerr := s.repos.Payments.UpdateStatus(ctx, record.ID, domain.PaymentFailed); uerr != nil {
			s.logger.Error("mark payment failed", zap.String("payment_id", record.ID.String()), zap.Error(uerr))
		}
		s.observe(record.PaymentType, domain.PaymentFailed)
		return nil, fmt.Errorf("apply payment %s: %w", record.ID, err)
	}

	record.Status = domain.PaymentCompleted
	s.observe(record.PaymentType, record.Status)
	if record.PaymentType == domain.PaymentWalletRecharge {
		s.movement(domain.TransactionDeposit)
	}
	s.logger.Info("payment completed",
		zap.String("payment_id", record.ID.String()),
		zap.Int64("user_id", userID),
		zap.String("type", string(record.PaymentType)),
		zap.String("amount", record.Amount.StringFixed(2)),
	)
	return record, nil
}

func (s *Service) decline(ctx context.Context, record *domain.PaymentRecord, authErr error) (*domain.PaymentRecord, error) {
	if err := s.repos.Payments.UpdateStatus(ctx, record.ID, domain.PaymentFailed); err != nil {
		return nil, fmt.Errorf("mark payment failed: %w", err)
	}
	record.Status = domain.PaymentFailed
	s.observe(record.PaymentType, record.Status)

	fields := []zap.Field{
		zap.String("payment_id", record.ID.String()),
		zap.Int64("user_id", record.UserID),
		zap.String("type", string(record.PaymentType)),
	}
	if authErr != nil {
		s.logger.Warn("payment authorization error", append(fields, zap.Error(authErr))...)
		return record, fmt.Errorf("%w: %v", ErrPaymentDeclined, authErr)
	}
	s.logger.Info("payment declined", fields...)
	return record, ErrPaymentDeclined
}

// ProcessBookingPayment pays a pending booking from the student's wallet.
// The debit, the ledger row, the booking confirmation and the payment
// history row commit together.
func (s *Service) ProcessBookingPayment(ctx context.Context, studentID, bookingID int64) (*domain.Booking, error) {
	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := checkPayable(b, studentID); err != nil {
		return nil, err
	}

	balance := decimal.Zero
	if w, err := s.repos.Wallets.GetByUserID(ctx, studentID); err == nil {
		balance = w.Balance
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if balance.LessThan(b.Amount) {
		return nil, ErrInsufficientFunds
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		locked, err := tx.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := checkPayable(locked, studentID); err != nil {
			return err
		}
		b = locked

		ref := strconv.FormatInt(b.ID, 10)
		if b.Amount.IsPositive() {
			if _, _, err := wallet.Debit(ctx, tx, wallet.Entry{
				UserID:      studentID,
				Amount:      b.Amount,
				Type:        domain.TransactionLessonPayment,
				ReferenceID: ref,
				Description: fmt.Sprintf("Lesson payment for booking #%d", b.ID),
			}); err != nil {
				return err
			}
		}

		if err := tx.Bookings.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrBookingNotPayable
			}
			return err
		}

		meta, _ := encodeMetadata(map[string]any{"booking_id": ref})
		return tx.Payments.Create(ctx, &domain.PaymentRecord{
			UserID:      studentID,
			Amount:      b.Amount,
			PaymentType: domain.PaymentLesson,
			Status:      domain.PaymentCompleted,
			Metadata:    meta,
		})
	})
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingConfirmed
	s.observe(domain.PaymentLesson, domain.PaymentCompleted)
	s.movement(domain.TransactionLessonPayment)
	s.logger.Info("booking paid",
		zap.Int64("booking_id", b.ID),
		zap.Int64("student_id", studentID),
		zap.String("amount", b.Amount.StringFixed(2)),
	)
	return b, nil
}

// RefundBooking credits a confirmed booking's amount back to the student,
// marks its lesson payment refunded and cancels the booking.
func (s *Service) RefundBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		locked, err := tx.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if locked.Status != domain.BookingConfirmed {
			return ErrBookingNotConfirmed
		}
		b = locked

		ref := strconv.FormatInt(b.ID, 10)
		if b.Amount.IsPositive() {
			if _, _, err := wallet.Credit(ctx, tx, wallet.Entry{
				UserID:      b.StudentID,
				Amount:      b.Amount,
				Type:        domain.TransactionRefund,
				ReferenceID: ref,
				Description: fmt.Sprintf("Refund for booking #%d", b.ID),
			}); err != nil {
				return err
			}
		}

		paid, err := tx.Payments.FindLessonPayment(ctx, b.StudentID, b.ID)
		switch {
		case err == nil:
			if err := tx.Payments.UpdateStatus(ctx, paid.ID, domain.PaymentRefunded); err != nil {
				return err
			}
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		return tx.Bookings.TransitionStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingCancelled)
	})
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingCancelled
	s.observe(domain.PaymentLesson, domain.PaymentRefunded)
	s.movement(domain.TransactionRefund)
	s.logger.Info("booking refunded",
		zap.Int64("booking_id", b.ID),
		zap.Int64("student_id", b.StudentID),
		zap.String("amount", b.Amount.StringFixed(2)),
	)
	return b, nil
}

func (s *Service) ListPayments(ctx context.Context, userID int64) ([]domain.PaymentRecord, error) {
	out, err := s.repos.Payments.ListByUser(ctx, userID)
	if out == nil {
		out = []domain.PaymentRecord{}
	}
	return out, err
}

func checkPayable(b *domain.Booking, studentID int64) error {
	if b.StudentID != studentID {
		return ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return ErrBookingNotPayable
	}
	return nil
}

func encodeMetadata(m map[string]any) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (s *Service) observe(t domain.PaymentType, status domain.PaymentStatus) {
	if s.metrics != nil {
		s.metrics.Payments.WithLabelValues(string(t), string(status)).Inc()
	}
}

func (s *Service) movement(t domain.TransactionType) {
	if s.metrics != nil {
		s.metrics.WalletMovements.WithLabelValues(string(t)).Inc()
	}
}
