package user

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity is the authenticated-principal contract the host session system
// consumes.
type Identity interface {
	ID() string
	Username() string
	Email() string
	AuthKey() string
	ValidateAuthKey(key string) bool
}

// SessionHost establishes an authenticated session for an identity. The
// default implementation mints a signed session token; hosts can plug in
// whatever their session layer needs.
type SessionHost interface {
	Login(ctx context.Context, identity Identity) (string, error)
}

// Notifier delivers confirmation and reset codes to users. Mail transport is
// owned by the host; the default implementation only logs.
type Notifier interface {
	SendConfirmation(ctx context.Context, user *User, token *Token) error
	SendPasswordReset(ctx context.Context, user *User, resetToken string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USER "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USER "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USER "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
