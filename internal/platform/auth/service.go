package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"equipment-tracker/internal/platform/apierr"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Claims is the JWT payload: sub = account id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewService(store AccountStore, secret string, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Service) Login(ctx context.Context, id, password string) (*Token, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	// 存在しない・無効・パスワード違いは区別せず同じエラーにする
	if acct == nil || acct.IsDisabled {
		return nil, apierr.ErrUnauthorized("invalid id or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.ErrUnauthorized("invalid id or password")
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: acct.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apierr.ErrInternal("token signing failed")
	}
	s.log.Info("operator logged in", zap.String("account_id", acct.ID), zap.String("role", acct.Role))
	return &Token{Token: signed, ExpiresAt: exp.UTC()}, nil
}

func (s *Service) Register(ctx context.Context, id, password, role string) error {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 64 {
		return apierr.ErrInvalid("id must be 1-64 characters")
	}
	if len(password) < 8 {
		return apierr.ErrInvalid("password must be at least 8 characters")
	}
	if role == "" {
		role = RoleOperator
	}
	if role != RoleOperator && role != RoleAdmin {
		return apierr.ErrInvalid("role must be operator or admin")
	}

	exists, err := s.store.GetByID(ctx, id)
	if err != nil {
		return apierr.FromStorage(err)
	}
	if exists != nil {
		return apierr.ErrConflict("account id already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apierr.ErrInvalid("password cannot be hashed")
	}
	if err := s.store.Create(ctx, &Account{ID: id, PasswordHash: string(hash), Role: role}); err != nil {
		return apierr.FromStorage(err)
	}
	s.log.Info("account registered", zap.String("account_id", id), zap.String("role", role))
	return nil
}
