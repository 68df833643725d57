package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-repository-bun"
)

// SignupForm carries untrusted registration input. RemoteIP comes from the
// host's request metadata and is stored for audit.
type SignupForm struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	RemoteIP string `form:"-" json:"-"`
}

// Normalize trims the fields that tolerate sloppy input
func (f *SignupForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strings.TrimSpace(f.Username)
}

// Validate runs the signup rules and returns field-scoped validation.Errors.
// Username rules only apply when the configuration requires a username. The
// uniqueness rule tolerates placeholder records (reserved accounts with no
// credentials) so they can be completed by a later signup.
func (f *SignupForm) Validate(ctx context.Context, cfg Config, store UserStore) error {
	f.Normalize()

	fields := []*validation.FieldRules{
		validation.Field(
			&f.Email,
			validation.Required,
			is.Email,
			validation.By(f.uniqueEmail(ctx, store)),
		),
		validation.Field(
			&f.Password,
			validation.Required,
			validation.Length(cfg.MinPasswordLength, 0),
		),
	}

	if cfg.RequireUsername {
		fields = append(fields, validation.Field(
			&f.Username,
			validation.Required,
			validation.Length(2, 255),
		))
	}

	return validation.ValidateStruct(f, fields...)
}

func (f *SignupForm) uniqueEmail(ctx context.Context, store UserStore) validation.RuleFunc {
	return func(value any) error {
		email, _ := value.(string)
		if email == "" {
			return nil
		}

		existing, err := store.FindActiveByEmail(ctx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		if !existing.IsPlaceholder() {
			return errEmailTaken
		}

		return nil
	}
}

var errEmailTaken = errors.New("this email address has already been taken")

func emailTakenError() validation.Errors {
	return validation.Errors{"email": errEmailTaken}
}

func passwordTooShortError(min int) validation.Errors {
	return validation.Errors{
		"password": fmt.Errorf("the length must be no less than %d", min),
	}
}
