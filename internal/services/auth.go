package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/apierr"
	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type AuthResult struct {
	Token string      `json:"accessToken"`
	User  *types.User `json:"user"`
}

type AuthService interface {
	Register(dbc dbctx.Context, input CreateUserInput) (*AuthResult, error)
	Login(dbc dbctx.Context, email, password string) (*AuthResult, error)
	ParseToken(tokenString string) (*ctxutil.RequestData, error)
}

type authService struct {
	log         *logger.Logger
	userService UserService
	secret      []byte
	tokenTTL    time.Duration
}

func NewAuthService(baseLog *logger.Logger, userService UserService, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		log:         baseLog.With("service", "AuthService"),
		userService: userService,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
	}
}

func (s *authService) Register(dbc dbctx.Context, input CreateUserInput) (*AuthResult, error) {
	// Registration never grants elevated roles.
	input.Role = types.UserRoleUser
	user, err := s.userService.Create(dbc, input)
	if err != nil {
		return nil, err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(dbc dbctx.Context, email, password string) (*AuthResult, error) {
	user, err := s.userService.GetByEmail(dbc, email)
	if err != nil {
		// Do not leak whether the account exists.
		return nil, apierr.Forbidden("invalid_credentials", "invalid email or password")
	}
	if !user.IsActive {
		return nil, apierr.Forbidden("account_disabled", "account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apierr.Forbidden("invalid_credentials", "invalid email or password")
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) issueToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apierr.Internal("token_sign_failed", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(tokenString string) (*ctxutil.RequestData, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.Forbidden("invalid_token", "missing or invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierr.Forbidden("invalid_token", "missing or invalid token")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apierr.Forbidden("invalid_token", "missing or invalid token")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &ctxutil.RequestData{UserID: userID, Email: email, Role: role}, nil
}
