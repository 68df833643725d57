package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// isConstraintViolation matches the unique/constraint failure spellings of the
// supported drivers; anything else is treated as a storage fault.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "constraint")
}

// UserStore is the narrow storage surface the Accounts service needs. The
// bun-backed Users repository satisfies it; tests use in-memory fakes.
type UserStore interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindActiveByEmail(ctx context.Context, email string) (*User, error)
	FindByValidResetToken(ctx context.Context, token string, expire time.Duration) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Save(ctx context.Context, record *User) (*User, error)
	ListUsers(ctx context.Context, params ListParams) ([]*User, int, error)
}

// TokenStore is the narrow token surface the Accounts service needs
type TokenStore interface {
	Issue(ctx context.Context, ttype TokenType, userID uuid.UUID, ttl time.Duration) (*Token, error)
	FindByCode(ctx context.Context, code string, ttype TokenType, userID uuid.UUID) (*Token, error)
	Consume(ctx context.Context, token *Token) error
	PurgeForUser(ctx context.Context, userID uuid.UUID) error
}

// Accounts orchestrates registration, confirmation, credential resets, and
// identity resolution for the host application.
type Accounts struct {
	cfg       Config
	users     UserStore
	tokens    TokenStore
	sessions  SessionHost
	notifier  Notifier
	logger    Logger
	now       func() time.Time
	useHashid bool
}

// AccountsOption customizes the Accounts service
type AccountsOption func(*Accounts)

// WithSessionHost sets the session collaborator used to log users in after a
// confirmation-free registration.
func WithSessionHost(sessions SessionHost) AccountsOption {
	return func(a *Accounts) {
		if sessions != nil {
			a.sessions = sessions
		}
	}
}

// WithNotifier sets the mail collaborator
func WithNotifier(notifier Notifier) AccountsOption {
	return func(a *Accounts) {
		if notifier != nil {
			a.notifier = notifier
		}
	}
}

// WithLogger overrides the default logger
func WithLogger(logger Logger) AccountsOption {
	return func(a *Accounts) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests)
func WithClock(clock func() time.Time) AccountsOption {
	return func(a *Accounts) {
		if clock != nil {
			a.now = clock
		}
	}
}

// WithHashidIDs derives new user IDs deterministically from the email instead
// of minting random UUIDs.
func WithHashidIDs() AccountsOption {
	return func(a *Accounts) {
		a.useHashid = true
	}
}

// NewAccounts creates the service. Pass the Users and Tokens repositories, or
// any other UserStore/TokenStore implementation.
func NewAccounts(cfg Config, users UserStore, tokens TokenStore, opts ...AccountsOption) *Accounts {
	if users == nil {
		panic("missing UserStore in accounts service")
	}
	if tokens == nil {
		panic("missing TokenStore in accounts service")
	}

	a := &Accounts{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		notifier: logNotifier{logger: defLogger{}},
		logger:   defLogger{},
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// Config returns the registration policy the service was built with
func (a *Accounts) Config() Config {
	return a.cfg
}

// Register persists a brand-new user record and kicks off the confirmation
// lifecycle. Calling it with an already-persisted record is a caller contract
// violation and panics.
//
// With confirmation disabled the record is stamped confirmed immediately and
// the identity is logged in through the SessionHost. With confirmation enabled
// a single-use confirmation code is issued and handed to the Notifier.
func (a *Accounts) Register(ctx context.Context, record *User) error {
	if record == nil {
		panic("register called with nil user")
	}
	if record.ID != uuid.Nil {
		panic(fmt.Sprintf("register called on existing user %s", record.ID))
	}

	if a.useHashid && record.Email != "" {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		}
	}

	if !a.cfg.EnableConfirmation {
		now := a.now()
		record.ConfirmedAt = &now
	}

	created, err := a.users.Create(ctx, record)
	if err != nil {
		if isConstraintViolation(err) {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}
	*record = *created

	if a.cfg.EnableConfirmation {
		token, err := a.tokens.Issue(ctx, TokenTypeConfirmation, record.ID, a.cfg.ConfirmationTokenExpire)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue confirmation token")
		}

		if err := a.notifier.SendConfirmation(ctx, record, token); err != nil {
			// the code is persisted, a re-send can recover delivery
			a.logger.Error("failed to send confirmation notification: %v", err)
		}
		return nil
	}

	if a.sessions == nil {
		a.logger.Debug("no session host configured, skipping post-registration login")
		return nil
	}

	if _, err := a.sessions.Login(ctx, NewIdentityFromUser(record)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to establish session after registration")
	}

	return nil
}

// Confirm redeems a confirmation code for the given user. Absent and expired
// codes are indistinguishable, both come back as ErrTokenNotFound. A
// successful confirmation consumes the code; it cannot be redeemed again.
func (a *Accounts) Confirm(ctx context.Context, record *User, code string) error {
	token, err := a.tokens.FindByCode(ctx, code, TokenTypeConfirmation, record.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up confirmation token")
	}

	if token.IsExpired(a.now()) {
		return ErrTokenNotFound
	}

	if err := a.tokens.Consume(ctx, token); err != nil {
		// a concurrent confirmation won the delete
		if repository.IsRecordNotFound(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume confirmation token")
	}

	now := a.now()
	record.ConfirmedAt = &now

	// trusted internal transition, no re-validation of the record
	if _, err := a.users.Save(ctx, record); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist confirmation")
	}

	return nil
}

// Signup validates untrusted input and resolves it into a registered user.
// Validation failures come back as field-scoped validation.Errors. An email
// bound to a placeholder record completes that record instead of creating a
// duplicate.
func (a *Accounts) Signup(ctx context.Context, form *SignupForm) (*User, error) {
	if err := form.Validate(ctx, a.cfg, a.users); err != nil {
		return nil, err
	}

	record, err := a.users.FindActiveByEmail(ctx, form.Email)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
	}

	if record != nil {
		// validation tolerates placeholder-only matches, anything else here
		// lost a race with a concurrent signup
		if !record.IsPlaceholder() {
			return nil, emailTakenError()
		}

		if err := record.SetPassword(form.Password); err != nil {
			return nil, err
		}

		if record, err = a.users.Save(ctx, record); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to complete placeholder account")
		}

		return record, nil
	}

	record = &User{
		Username:   form.Username,
		Email:      form.Email,
		RegisterIP: form.RemoteIP,
	}
	if err := record.SetPassword(form.Password); err != nil {
		return nil, err
	}

	if err := a.Register(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// RequestPasswordReset issues (or re-uses) a reset token for the account
// bound to email and hands it to the Notifier.
func (a *Accounts) RequestPasswordReset(ctx context.Context, email string) error {
	record, err := a.users.FindActiveByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
	}

	if !IsPasswordResetTokenValid(record.PasswordResetToken, a.cfg.PasswordResetTokenExpire) {
		record.GeneratePasswordResetTokenAt(a.now())
		if record, err = a.users.Save(ctx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
		}
	}

	if err := a.notifier.SendPasswordReset(ctx, record, record.PasswordResetToken); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send password reset notification")
	}

	return nil
}

// ResetPassword redeems a reset token and stores the new credential. The
// token is cleared and the auth key rotated so outstanding "remember me"
// cookies stop validating.
func (a *Accounts) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < a.cfg.MinPasswordLength {
		return passwordTooShortError(a.cfg.MinPasswordLength)
	}

	record, err := a.users.FindByValidResetToken(ctx, token, a.cfg.PasswordResetTokenExpire)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if err := record.SetPassword(password); err != nil {
		return err
	}
	record.RemovePasswordResetToken()
	record.GenerateAuthKey()

	if _, err := a.users.Save(ctx, record); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist new password")
	}

	return nil
}

// VerifyIdentity resolves an email and password into an Identity. Unknown
// accounts and bad passwords are indistinguishable to the caller.
func (a *Accounts) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	record, err := a.users.FindActiveByEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !record.ValidatePassword(password) {
		return nil, ErrMismatchedHashAndPassword
	}

	return NewIdentityFromUser(record), nil
}

// FindIdentity resolves an active user by its ID
func (a *Accounts) FindIdentity(ctx context.Context, id string) (Identity, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	record, err := a.users.FindActiveByID(ctx, uid)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve identity")
	}

	return NewIdentityFromUser(record), nil
}

// FindIdentityByAccessToken is not implemented by this module
func (a *Accounts) FindIdentityByAccessToken(ctx context.Context, token string) (Identity, error) {
	return nil, ErrNotSupported
}

// ListUsers returns a page of users; it only wires query parameters through
func (a *Accounts) ListUsers(ctx context.Context, params ListParams) ([]*User, int, error) {
	return a.users.ListUsers(ctx, params)
}

// Delete retires a user and purges its outstanding tokens
func (a *Accounts) Delete(ctx context.Context, record *User) error {
	record.Status = StatusDeleted

	if _, err := a.users.Save(ctx, record); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retire user")
	}

	if err := a.tokens.PurgeForUser(ctx, record.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to purge user tokens")
	}

	return nil
}
