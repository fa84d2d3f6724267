package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"parley-chat/config"
	"parley-chat/internal/domain/user"
	"parley-chat/internal/repository"
	parley_errors "parley-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	AccessToken string
	ExpiresIn   int64
	User        user.User
}

type AccessClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, parley_errors.NewValidationError("email", "has already been taken")
	} else if !errors.Is(err, parley_errors.ErrNotFound) {
		return AuthResult{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	newUser := &user.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, parley_errors.ErrAlreadyExists) {
			return AuthResult{}, parley_errors.NewValidationError("email", "has already been taken")
		}
		return AuthResult{}, err
	}

	return s.issue(*newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	if err := validateInput(in); err != nil {
		return AuthResult{}, err
	}

	u, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, parley_errors.ErrNotFound) {
			return AuthResult{}, parley_errors.ErrUnauthorized
		}
		return AuthResult{}, err
	}

	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResult{}, parley_errors.ErrUnauthorized
	}

	return s.issue(u)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, parley_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, parley_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, parley_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.UserID <= 0 {
		return AccessClaims{}, parley_errors.ErrUnauthorized
	}

	return *claims, nil
}

// Authenticate resolves a bearer token to the id of an existing user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (int64, error) {
	claims, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return 0, err
	}
	if _, err := s.userRepo.GetUserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, parley_errors.ErrNotFound) {
			return 0, parley_errors.ErrUnauthorized
		}
		return 0, err
	}
	return claims.UserID, nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, parley_errors.ErrValidation), errors.Is(err, parley_errors.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parley_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, parley_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, parley_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, parley_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parley_errors.ErrAlreadyExists), errors.Is(err, parley_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, parley_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, parley_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *AuthService) issue(u user.User) (AuthResult, error) {
	token, expiresIn, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{AccessToken: token, ExpiresIn: expiresIn, User: u}, nil
}

func (s *AuthService) newAccessToken(userID int64) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.accessTTL.Seconds()), nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
