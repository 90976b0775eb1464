package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/config"
	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/middleware"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidRefresh     = errors.New("refresh token inválido ou expirado")
)

// AuthService issues JWT access tokens and keeps refresh tokens in redis so
// they can be revoked server-side.
type AuthService struct {
	users *repository.UserRepository
	rdb   *redis.Client
	cfg   *config.Config
}

func NewAuthService(users *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{users: users, rdb: rdb, cfg: cfg}
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *AuthService) Login(ctx context.Context, email, senha string) (*TokenPair, *entity.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(senha)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if s.rdb == nil {
		return nil, ErrInvalidRefresh
	}

	userID, err := s.rdb.Get(ctx, refreshKey(refreshToken)).Result()
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	// rotate: the old token dies with the new issue
	s.rdb.Del(ctx, refreshKey(refreshToken))
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if s.rdb != nil && refreshToken != "" {
		s.rdb.Del(ctx, refreshKey(refreshToken))
	}
}

func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *entity.User) (*TokenPair, error) {
	expire := s.cfg.JWT.AccessTokenExpire
	if expire == 0 {
		expire = time.Hour
	}

	claims := middleware.JWTClaims{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Nome:           user.Nome,
		Email:          user.Email,
		Role:           user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	refresh := uuid.New().String()
	if s.rdb != nil {
		refreshExpire := s.cfg.JWT.RefreshTokenExpire
		if refreshExpire == 0 {
			refreshExpire = 7 * 24 * time.Hour
		}
		if err := s.rdb.Set(ctx, refreshKey(refresh), user.ID, refreshExpire).Err(); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(expire.Seconds()),
	}, nil
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}
