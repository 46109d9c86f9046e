package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UserStore persists credential records. All mutations run on whatever *gorm.DB
// handle the store was built with, so callers can scope a store to a
// transaction.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByEmail(email string) (*User, error) {
	var user User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(email, passwordHash string, twoFAEnabled bool) (*User, error) {
	user := &User{
		Email:        email,
		PasswordHash: passwordHash,
		TwoFAEnabled: twoFAEnabled,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserStore) UpdateLastLogin(user *User, ts time.Time) error {
	if err := s.db.Model(user).Update("last_login", ts).Error; err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &ts
	return nil
}

// ToggleTwoFactor flips the flag and returns the new state. An explicit
// Update is used so a false value is not dropped as a zero value.
func (s *UserStore) ToggleTwoFactor(user *User) (bool, error) {
	newState := !user.TwoFAEnabled
	if err := s.db.Model(user).Update("two_fa_enabled", newState).Error; err != nil {
		return user.TwoFAEnabled, fmt.Errorf("failed to toggle two-factor flag: %w", err)
	}
	user.TwoFAEnabled = newState
	return newState, nil
}

// CodeStore persists one-time verification codes.
type CodeStore struct {
	db *gorm.DB
}

func NewCodeStore(db *gorm.DB) *CodeStore {
	return &CodeStore{db: db}
}

// InvalidateAllUnused marks every unused code for a user as used. Run before
// issuing a new code so at most one valid code exists per user. Idempotent.
func (s *CodeStore) InvalidateAllUnused(userID uint) error {
	err := s.db.Model(&VerificationCode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate unused codes: %w", err)
	}
	return nil
}

func (s *CodeStore) Issue(userID uint, code string, expiresAt time.Time) (*VerificationCode, error) {
	record := &VerificationCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to issue verification code: %w", err)
	}
	return record, nil
}

// FindValid returns a record only when the code matches exactly, is unused,
// and has not expired. Leading zeros are significant.
func (s *CodeStore) FindValid(userID uint, code string, now time.Time) (*VerificationCode, error) {
	var record VerificationCode
	err := s.db.Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?",
		userID, code, false, now).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *CodeStore) MarkUsed(record *VerificationCode) error {
	if err := s.db.Model(record).Update("used", true).Error; err != nil {
		return fmt.Errorf("failed to mark verification code as used: %w", err)
	}
	record.Used = true
	return nil
}

// PurgeExpired deletes all codes past their expiry. Safe to run concurrently
// with issuance; expired codes never gate user deletion.
func (s *CodeStore) PurgeExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired verification codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
