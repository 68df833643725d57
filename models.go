package user

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserStatus is the user's lifecycle status
type UserStatus = string

const (
	// StatusActive marks a user that can authenticate and be resolved as an identity
	StatusActive UserStatus = "active"
	// StatusDeleted marks a user that is retired and invisible to identity lookups
	StatusDeleted UserStatus = "deleted"
)

// User is the persisted identity record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username           string     `bun:"username" json:"username,omitempty"`
	Email              string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash       string     `bun:"password_hash" json:"-"`
	AuthKey            string     `bun:"auth_key" json:"-"`
	PasswordResetToken string     `bun:"password_reset_token,nullzero" json:"-"`
	Status             UserStatus `bun:"status,notnull" json:"status,omitempty"`
	RegisterIP         string     `bun:"register_ip" json:"register_ip,omitempty"`
	ConfirmedAt        *time.Time `bun:"confirmed_at,nullzero" json:"confirmed_at,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus will default an empty status to active
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = StatusActive
	}
}

// IsActive reports whether the user can be resolved as an identity
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsDeleted reports whether the user has been retired
func (u *User) IsDeleted() bool {
	return u.Status == StatusDeleted
}

// IsConfirmed reports whether the user completed email confirmation
func (u *User) IsConfirmed() bool {
	return u.ConfirmedAt != nil
}

// IsPlaceholder reports whether the record was reserved (e.g. by an invite
// flow) and never had credentials set. Placeholder records do not count as
// registered accounts for signup uniqueness checks.
func (u *User) IsPlaceholder() bool {
	return u.PasswordHash == ""
}

// SetPassword derives and stores a password hash. The cleartext is never
// persisted.
func (u *User) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// ValidatePassword compares the given cleartext against the stored hash.
// A mismatch returns false, never an error.
func (u *User) ValidatePassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return ComparePasswordAndHash(password, u.PasswordHash) == nil
}

// GenerateAuthKey assigns a fresh "remember me" session validation secret
func (u *User) GenerateAuthKey() {
	u.AuthKey = RandomString(32)
}

// ValidateAuthKey checks a cookie-provided key against the stored secret
func (u *User) ValidateAuthKey(key string) bool {
	return u.AuthKey != "" && u.AuthKey == key
}

// GeneratePasswordResetToken assigns a new reset token. The token embeds its
// own issue time as a trailing _<unix> suffix, which IsPasswordResetTokenValid
// consumes to decide expiry.
func (u *User) GeneratePasswordResetToken() {
	u.GeneratePasswordResetTokenAt(time.Now())
}

// GeneratePasswordResetTokenAt is the clock-injectable variant used by tests
func (u *User) GeneratePasswordResetTokenAt(now time.Time) {
	u.PasswordResetToken = RandomString(32) + "_" + strconv.FormatInt(now.Unix(), 10)
}

// RemovePasswordResetToken clears the reset token, invalidating future use
func (u *User) RemovePasswordResetToken() {
	u.PasswordResetToken = ""
}

// Touch refreshes the updated timestamp. Repositories call this on every
// update so the column stays accurate without database triggers.
func (u *User) Touch(now time.Time) {
	u.UpdatedAt = &now
}

// IsPasswordResetTokenValid reports whether a reset token is still usable.
// The trailing segment after the last underscore is the issue timestamp; a
// missing or malformed suffix parses as 0 and is treated as long expired.
func IsPasswordResetTokenValid(token string, expire time.Duration) bool {
	return isPasswordResetTokenValidAt(token, expire, time.Now())
}

func isPasswordResetTokenValidAt(token string, expire time.Duration, now time.Time) bool {
	if token == "" {
		return false
	}

	suffix := token
	if i := strings.LastIndex(token, "_"); i >= 0 {
		suffix = token[i+1:]
	}

	issued, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		issued = 0
	}

	return !time.Unix(issued, 0).Add(expire).Before(now)
}

// TokenType distinguishes the short-lived codes we issue
type TokenType = string

const (
	// TokenTypeConfirmation proves control of the registered email
	TokenTypeConfirmation TokenType = "confirmation"
	// TokenTypeReset proves the right to set a new password
	TokenTypeReset TokenType = "reset"
)

// Token is a single-use code linked to a user
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tkn"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Code      string     `bun:"code,notnull,unique" json:"code,omitempty"`
	Type      TokenType  `bun:"type,notnull" json:"type,omitempty"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User      *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ExpiresAt time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the token is past its stored expiry
func (t *Token) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
