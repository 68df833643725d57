package user

import "time"

// Config carries the registration policy knobs. It is passed explicitly into
// constructors; there is no global lookup.
type Config struct {
	// EnableConfirmation requires new accounts to confirm their email before
	// they are considered confirmed. When disabled, registration confirms the
	// account immediately and logs the identity in.
	EnableConfirmation bool
	// RequireUsername makes the username field mandatory on signup
	RequireUsername bool
	// MinPasswordLength is the minimum accepted password length on signup
	MinPasswordLength int
	// PasswordResetTokenExpire bounds the lifetime of suffix-encoded reset tokens
	PasswordResetTokenExpire time.Duration
	// ConfirmationTokenExpire bounds the lifetime of stored confirmation tokens
	ConfirmationTokenExpire time.Duration
}

// DefaultConfig returns the policy used when the host does not override it
func DefaultConfig() Config {
	return Config{
		EnableConfirmation:       true,
		RequireUsername:          false,
		MinPasswordLength:        6,
		PasswordResetTokenExpire: time.Hour,
		ConfirmationTokenExpire:  24 * time.Hour,
	}
}
