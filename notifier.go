package user

import "context"

// logNotifier is the default Notifier, it only logs the codes it would have
// delivered. Hosts wire their own mail transport.
type logNotifier struct {
	logger Logger
}

var _ Notifier = logNotifier{}

func (n logNotifier) SendConfirmation(ctx context.Context, user *User, token *Token) error {
	n.logger.Info("confirmation code issued for %s: %s", user.Email, token.Code)
	return nil
}

func (n logNotifier) SendPasswordReset(ctx context.Context, user *User, resetToken string) error {
	n.logger.Info("password reset token issued for %s: %s", user.Email, resetToken)
	return nil
}
