package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/services/logging"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredCode  = errors.New("invalid or expired verification code")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrPasswordHashingFailed = errors.New("failed to hash password")
)

// TokenIssuer mints signed bearer tokens for an authenticated email.
type TokenIssuer interface {
	GenerateToken(email string) (string, error)
}

// CodeSender delivers a verification code out-of-band.
type CodeSender interface {
	SendVerificationCode(to, code string, expiry time.Duration) error
}

// Service orchestrates registration and the two-step login flow over the
// credential and verification-code stores.
type Service struct {
	config *config.Config
	db     *gorm.DB
	tokens TokenIssuer
	sender CodeSender
	logger *logging.Service
}

// LoginResult is the outcome of LoginStep1. Token is set only when the
// account has two-factor login disabled.
type LoginResult struct {
	Requires2FA bool
	Token       string
}

func NewService(cfg *config.Config, db *gorm.DB, tokens TokenIssuer, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		db:     db,
		tokens: tokens,
		logger: logger,
	}
}

func (s *Service) SetCodeSender(sender CodeSender) {
	s.sender = sender
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates the account with two-factor login enabled and returns an
// access token immediately; registration itself never requires a code.
func (s *Service) Register(email, password string) (string, error) {
	s.logger.Info("registering user", zap.String("email", email))

	users := NewUserStore(s.db)
	if _, err := users.FindByEmail(email); err == nil {
		return "", ErrEmailTaken
	} else if !IsNotFound(err) {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return "", err
	}

	user, err := users.Create(email, hash, true)
	if err != nil {
		// The unique index closes the pre-check race under concurrent
		// registration for the same address.
		if isDuplicateKey(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	token, err := s.tokens.GenerateToken(user.Email)
	if err != nil {
		return "", err
	}

	s.logger.Info("user registered", zap.String("email", email), zap.Uint("user_id", user.ID))
	return token, nil
}

// LoginStep1 checks credentials and branches on the two-factor flag. The
// same error covers unknown email and wrong password so the endpoint does
// not leak account existence.
func (s *Service) LoginStep1(email, password string) (*LoginResult, error) {
	users := NewUserStore(s.db)

	user, err := users.FindByEmail(email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("invalid credentials", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if !user.TwoFAEnabled {
		if err := users.UpdateLastLogin(user, time.Now().UTC()); err != nil {
			return nil, err
		}
		token, err := s.tokens.GenerateToken(user.Email)
		if err != nil {
			return nil, err
		}
		s.logger.Info("direct login completed", zap.String("email", email))
		return &LoginResult{Requires2FA: false, Token: token}, nil
	}

	if err := s.issueAndSendCode(user); err != nil {
		return nil, err
	}

	return &LoginResult{Requires2FA: true}, nil
}

// LoginStep2 verifies a code and completes login. Marking the code used and
// recording the login happen in one transaction; a used code can never
// authenticate again even inside its expiry window.
func (s *Service) LoginStep2(email, code string) (string, error) {
	user, err := NewUserStore(s.db).FindByEmail(email)
	if err != nil {
		if IsNotFound(err) {
			return "", ErrInvalidRequest
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		codes := NewCodeStore(tx)

		record, err := codes.FindValid(user.ID, code, time.Now().UTC())
		if err != nil {
			if IsNotFound(err) {
				return ErrInvalidOrExpiredCode
			}
			return fmt.Errorf("failed to look up verification code: %w", err)
		}

		if err := codes.MarkUsed(record); err != nil {
			return err
		}

		return NewUserStore(tx).UpdateLastLogin(user, time.Now().UTC())
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredCode) {
			s.logger.Warn("invalid or expired verification code", zap.String("email", email))
		}
		return "", err
	}

	token, err := s.tokens.GenerateToken(user.Email)
	if err != nil {
		return "", err
	}

	s.logger.Info("two-step login completed", zap.String("email", email))
	return token, nil
}

// ResendCode reissues a verification code unconditionally. Prior unused
// codes are invalidated, so retrying after a failed email dispatch is safe.
func (s *Service) ResendCode(email string) error {
	user, err := NewUserStore(s.db).FindByEmail(email)
	if err != nil {
		if IsNotFound(err) {
			return ErrInvalidRequest
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return s.issueAndSendCode(user)
}

// issueAndSendCode invalidates prior unused codes and persists a fresh one
// inside a single transaction, then dispatches it. A dispatch failure fails
// the whole step; the persisted code stays valid until superseded or expired.
func (s *Service) issueAndSendCode(user *User) error {
	code, err := s.generateVerificationCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(s.config.Auth.CodeExpiry)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		codes := NewCodeStore(tx)
		if err := codes.InvalidateAllUnused(user.ID); err != nil {
			return err
		}
		_, err := codes.Issue(user.ID, code, expiresAt)
		return err
	})
	if err != nil {
		return err
	}

	if s.sender == nil {
		return fmt.Errorf("code sender is not configured")
	}

	if err := s.sender.SendVerificationCode(user.Email, code, s.config.Auth.CodeExpiry); err != nil {
		s.logger.Error("failed to send verification code",
			zap.Error(err),
			zap.String("email", user.Email))
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	s.logger.Info("verification code sent",
		zap.String("email", user.Email),
		zap.Time("expires_at", expiresAt))
	return nil
}

// ToggleTwoFactor flips the user's two-factor flag and returns the new state.
func (s *Service) ToggleTwoFactor(user *User) (bool, error) {
	newState, err := NewUserStore(s.db).ToggleTwoFactor(user)
	if err != nil {
		return user.TwoFAEnabled, err
	}

	s.logger.Info("two-factor flag toggled",
		zap.String("email", user.Email),
		zap.Bool("enabled", newState))
	return newState, nil
}

// CleanupExpiredCodes deletes expired verification codes and reports how many
// were removed. Intended for periodic maintenance.
func (s *Service) CleanupExpiredCodes() (int64, error) {
	removed, err := NewCodeStore(s.db).PurgeExpired(time.Now().UTC())
	if err != nil {
		return 0, err
	}

	s.logger.Info("expired verification codes cleaned up", zap.Int64("codes_removed", removed))
	return removed, nil
}

// GetUserByEmail resolves a bearer token subject to a credential record.
func (s *Service) GetUserByEmail(email string) (*User, error) {
	return NewUserStore(s.db).FindByEmail(email)
}

// generateVerificationCode draws each digit independently so leading zeros
// are kept and the distribution stays uniform.
func (s *Service) generateVerificationCode() (string, error) {
	var b strings.Builder
	for i := 0; i < s.config.Auth.CodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
