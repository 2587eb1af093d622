package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shelley-server/internal/models"
	"shelley-server/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12
	// AuthTokenTTL matches the auth cookie lifetime.
	AuthTokenTTL = 30 * 24 * time.Hour
)

// AuthService manages accounts and the JWT auth tokens they carry.
type AuthService interface {
	// SignUp creates an account, links the current session's progress to
	// it and returns a signed auth token.
	SignUp(ctx context.Context, email, password string, displayName *string, sessionID *uuid.UUID) (*models.Account, string, error)
	// Login verifies credentials and links the current session's progress
	// unless it already belongs to another account.
	Login(ctx context.Context, email, password string, sessionID *uuid.UUID) (*models.Account, string, error)
	// VerifyToken parses and validates an auth token.
	VerifyToken(token string) (*models.AccountClaims, error)
	Account(ctx context.Context, accountID int64) (*models.Account, error)
}

type authServiceImpl struct {
	accounts  repository.AccountRepository
	progress  repository.ProgressRepository
	jwtSecret []byte
	logger    *zap.Logger
}

// Compile-time check to ensure implementation satisfies the interface.
var _ AuthService = (*authServiceImpl)(nil)

func NewAuthService(accounts repository.AccountRepository, progress repository.ProgressRepository, jwtSecret []byte, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		accounts:  accounts,
		progress:  progress,
		jwtSecret: jwtSecret,
		logger:    logger.Named("AuthService"),
	}
}

func (s *authServiceImpl) SignUp(ctx context.Context, email, password string, displayName *string, sessionID *uuid.UUID) (*models.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", models.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, "", models.ErrInternalServer
	}

	account, err := s.accounts.Create(ctx, email, string(hash), displayName)
	if err != nil {
		return nil, "", err
	}

	s.linkSession(ctx, sessionID, account.ID, false)

	token, err := s.signToken(account)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Account signed up", zap.Int64("accountID", account.ID))
	return account, token, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string, sessionID *uuid.UUID) (*models.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", models.ErrInvalidInput
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			// Same answer as a wrong password: never reveal which part failed.
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	// Merge anonymous progress, but never steal rows owned elsewhere.
	s.linkSession(ctx, sessionID, account.ID, true)

	token, err := s.signToken(account)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Account logged in", zap.Int64("accountID", account.ID))
	return account, token, nil
}

func (s *authServiceImpl) VerifyToken(tokenString string) (*models.AccountClaims, error) {
	claims := &models.AccountClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrTokenInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

func (s *authServiceImpl) Account(ctx context.Context, accountID int64) (*models.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// linkSession is best effort: a failed link loses anonymous progress
// merging but must not fail signup or login.
func (s *authServiceImpl) linkSession(ctx context.Context, sessionID *uuid.UUID, accountID int64, onlyIfUnlinked bool) {
	if sessionID == nil {
		return
	}
	if err := s.progress.LinkAccount(ctx, *sessionID, accountID, onlyIfUnlinked); err != nil {
		s.logger.Warn("Failed to link session progress",
			zap.Stringer("sessionID", *sessionID), zap.Int64("accountID", accountID), zap.Error(err))
	}
}

func (s *authServiceImpl) signToken(account *models.Account) (string, error) {
	now := time.Now()
	claims := models.AccountClaims{
		AccountID: account.ID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AuthTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to sign auth token", zap.Error(err))
		return "", models.ErrInternalServer
	}
	return signed, nil
}
