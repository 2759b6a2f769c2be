// Package session carries the authenticated caller explicitly through
// request contexts.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/domain"
	"tutorhub/internal/pkg/cache"
	"tutorhub/internal/pkg/jwt"
)

var (
	ErrInvalid = errors.New("invalid session")
	ErrRevoked = errors.New("session revoked")
)

// Session is created once per request from a verified token.
type Session struct {
	UserID    int64           `json:"user_id"`
	Role      domain.UserRole `json:"role"`
	Email     string          `json:"email,omitempty"`
	TokenID   string          `json:"-"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (s *Session) Is(role domain.UserRole) bool {
	return s != nil && s.Role == role
}

type ctxKey struct{}

const ginKey = "session"

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Attach stores s on the gin context and on the request context.
func Attach(c *gin.Context, s *Session) {
	c.Set(ginKey, s)
	c.Set("user_id", s.UserID)
	c.Set("role", string(s.Role))
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), s))
}

// FromGin returns the session set by the auth middleware.
func FromGin(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

// Store remembers revoked token ids until the token would have expired.
type Store struct {
	cache cache.Cache
	now   func() time.Time
}

func NewStore(c cache.Cache) *Store {
	return &Store{cache: c, now: time.Now}
}

func revokedKey(tokenID string) string { return "session:revoked:" + tokenID }

func (s *Store) Revoke(ctx context.Context, sess *Session) error {
	if sess == nil || sess.TokenID == "" {
		return ErrInvalid
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.SetJSON(ctx, revokedKey(sess.TokenID), true, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	var revoked bool
	found, err := s.cache.GetJSON(ctx, revokedKey(tokenID), &revoked)
	if err != nil {
		return false, err
	}
	return found && revoked, nil
}

// Authenticator turns bearer tokens into sessions.
type Authenticator struct {
	tokens *jwt.Service
	store  *Store
}

func NewAuthenticator(tokens *jwt.Service, store *Store) *Authenticator {
	return &Authenticator{tokens: tokens, store: store}
}

// Begin builds the session for a freshly issued token.
func Begin(claims *jwt.Claims) *Session {
	s := &Session{
		UserID:  claims.UserID,
		Role:    domain.UserRole(claims.Role),
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalid
	}
	sess := Begin(claims)
	if !sess.Role.Valid() {
		return nil, ErrInvalid
	}
	if a.store != nil {
		revoked, err := a.store.IsRevoked(ctx, sess.TokenID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return sess, nil
}

// End revokes the session's token.
func (a *Authenticator) End(ctx context.Context, sess *Session) error {
	if a.store == nil {
		return nil
	}
	return a.store.Revoke(ctx, sess)
}
