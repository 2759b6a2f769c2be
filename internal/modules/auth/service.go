package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/domain"
	"tutorhub/internal/pkg/cache"
	"tutorhub/internal/pkg/jwt"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

type TokenIssuer interface {
	GenerateToken(userID int64, role, email string) (string, *jwt.Claims, error)
}

type SessionEnder interface {
	End(ctx context.Context, sess *session.Session) error
}

type Service struct {
	repos    *repository.Repositories
	tokens   TokenIssuer
	sessions SessionEnder
	attempts cache.Cache
	cost     int
	logger   *zap.Logger
}

func NewService(repos *repository.Repositories, tokens TokenIssuer, sessions SessionEnder, attempts cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		repos:    repos,
		tokens:   tokens,
		sessions: sessions,
		attempts: attempts,
		cost:     bcrypt.DefaultCost,
		logger:   logger.With(zap.String("component", "auth")),
	}
}

// Register creates the account and signs the user in. Teachers also get an
// inactive teacher row they fill in later.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	role := domain.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = domain.RoleStudent
	}
	if role != domain.RoleStudent && role != domain.RoleTeacher {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repos.Profiles.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &domain.Profile{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     strings.TrimSpace(req.FullName),
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Profiles.Create(ctx, p); err != nil {
			return err
		}
		if role != domain.RoleTeacher {
			return nil
		}
		return tx.Teachers.Create(ctx, &domain.Teacher{
			ProfileID:  p.ID,
			HourlyRate: decimal.Zero,
			Currency:   "SAR",
			IsActive:   false,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", zap.Int64("user_id", p.ID), zap.String("role", string(role)))
	return s.issue(p)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if s.locked(ctx, email) {
		return nil, ErrTooManyAttempts
	}

	p, err := s.repos.Profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if err := s.attempts.Delete(ctx, attemptsKey(email)); err != nil {
		s.logger.Warn("clear login attempts", zap.Error(err))
	}
	return s.issue(p)
}

// Logout revokes the token behind sess until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	if err := s.sessions.End(ctx, sess); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("logged out", zap.Int64("user_id", sess.UserID))
	return nil
}

func (s *Service) issue(p *domain.Profile) (*AuthResult, error) {
	token, claims, err := s.tokens.GenerateToken(p.ID, string(p.Role), p.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	res := &AuthResult{Profile: p, AccessToken: token, TokenType: "Bearer"}
	if claims.ExpiresAt != nil {
		res.ExpiresAt = claims.ExpiresAt.Time
	}
	return res, nil
}

type failures struct {
	Count int `json:"count"`
}

func attemptsKey(email string) string { return "auth:failures:" + email }

func (s *Service) locked(ctx context.Context, email string) bool {
	var f failures
	ok, err := s.attempts.GetJSON(ctx, attemptsKey(email), &f)
	if err != nil {
		s.logger.Warn("read login attempts", zap.Error(err))
		return false
	}
	return ok && f.Count >= maxFailedLoginAttempts
}

// recordFailure counts a failed attempt. The window restarts with every
// failure, so a lockout lasts lockoutDuration after the last try.
func (s *Service) recordFailure(ctx context.Context, email string) {
	var f failures
	if _, err := s.attempts.GetJSON(ctx, attemptsKey(email), &f); err != nil {
		s.logger.Warn("read login attempts", zap.Error(err))
	}
	f.Count++
	if err := s.attempts.SetJSON(ctx, attemptsKey(email), f, lockoutDuration); err != nil {
		s.logger.Warn("write login attempts", zap.Error(err))
	}
	if f.Count == maxFailedLoginAttempts {
		s.logger.Warn("login locked", zap.String("email", email))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
