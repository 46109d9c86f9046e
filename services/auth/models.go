package auth

import (
	"time"
)

// User is the credential record. Email uniqueness is enforced at the store
// via the unique index; two-factor login is on by default for new accounts.
type User struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	TwoFAEnabled bool       `json:"two_fa_enabled" gorm:"default:true"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// VerificationCode is a short-lived one-time login code. At most one unused,
// unexpired code is honored per user: issuing a new code marks all prior
// unused codes as used inside the same transaction.
type VerificationCode struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Code      string    `json:"-" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (VerificationCode) TableName() string {
	return "email_verification_codes"
}

// Models lists every persisted type for AutoMigrate.
func Models() []any {
	return []any{&User{}, &VerificationCode{}}
}
