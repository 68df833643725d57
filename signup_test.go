package user_test

import (
	"context"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	user "github.com/userkit/go-user"
)

func testConfig() user.Config {
	return user.Config{
		EnableConfirmation:       true,
		RequireUsername:          false,
		MinPasswordLength:        6,
		PasswordResetTokenExpire: time.Hour,
		ConfirmationTokenExpire:  24 * time.Hour,
	}
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	return verrs
}

func TestSignupFormValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		form      user.SignupForm
		cfg       func(user.Config) user.Config
		wantField string
	}{
		{
			name: "valid input",
			form: user.SignupForm{Email: "pepe@example.com", Password: "secret99"},
		},
		{
			name:      "missing email",
			form:      user.SignupForm{Password: "secret99"},
			wantField: "email",
		},
		{
			name:      "syntactically invalid email",
			form:      user.SignupForm{Email: "not-an-email", Password: "secret99"},
			wantField: "email",
		},
		{
			name:      "missing password",
			form:      user.SignupForm{Email: "pepe@example.com"},
			wantField: "password",
		},
		{
			name:      "password below configured minimum",
			form:      user.SignupForm{Email: "pepe@example.com", Password: "12345"},
			wantField: "password",
		},
		{
			name: "username optional by default",
			form: user.SignupForm{Email: "pepe@example.com", Password: "secret99"},
		},
		{
			name:      "username required by configuration",
			form:      user.SignupForm{Email: "pepe@example.com", Password: "secret99"},
			cfg:       func(c user.Config) user.Config { c.RequireUsername = true; return c },
			wantField: "username",
		},
		{
			name:      "username too short",
			form:      user.SignupForm{Username: "x", Email: "pepe@example.com", Password: "secret99"},
			cfg:       func(c user.Config) user.Config { c.RequireUsername = true; return c },
			wantField: "username",
		},
		{
			name: "username long enough",
			form: user.SignupForm{Username: "po", Email: "pepe@example.com", Password: "secret99"},
			cfg:  func(c user.Config) user.Config { c.RequireUsername = true; return c },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.cfg != nil {
				cfg = tt.cfg(cfg)
			}

			err := tt.form.Validate(ctx, cfg, newMemUserStore())

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			verrs := fieldErrors(t, err)
			assert.Len(t, verrs, 1)
			assert.Contains(t, verrs, tt.wantField)
		})
	}
}

func TestSignupFormValidateTrimsEmail(t *testing.T) {
	form := user.SignupForm{Email: "  pepe@example.com ", Password: "secret99"}

	err := form.Validate(context.Background(), testConfig(), newMemUserStore())

	assert.NoError(t, err)
	assert.Equal(t, "pepe@example.com", form.Email)
}

func TestSignupFormValidateUniqueEmail(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()

	full := &user.User{Email: "taken@example.com"}
	require.NoError(t, full.SetPassword("existing99"))
	_, err := store.Create(ctx, full)
	require.NoError(t, err)

	placeholder := &user.User{Email: "invited@example.com"}
	_, err = store.Create(ctx, placeholder)
	require.NoError(t, err)

	t.Run("full account conflicts", func(t *testing.T) {
		form := user.SignupForm{Email: "taken@example.com", Password: "secret99"}
		verrs := fieldErrors(t, form.Validate(ctx, testConfig(), store))
		assert.Len(t, verrs, 1)
		assert.Contains(t, verrs, "email")
	})

	t.Run("placeholder account tolerated", func(t *testing.T) {
		form := user.SignupForm{Email: "invited@example.com", Password: "secret99"}
		assert.NoError(t, form.Validate(ctx, testConfig(), store))
	})
}
