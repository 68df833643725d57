package user_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	user "github.com/userkit/go-user"
)

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrIdentityNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, user.ErrIdentityNotFound.Category)
		assert.Equal(t, user.TextCodeIdentityNotFound, user.ErrIdentityNotFound.TextCode)
	})

	t.Run("ErrTokenNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, user.ErrTokenNotFound.Category)
		assert.Equal(t, user.TextCodeTokenNotFound, user.ErrTokenNotFound.TextCode)
		assert.Equal(t, "token not found or expired", user.ErrTokenNotFound.Message)
	})

	t.Run("ErrMismatchedHashAndPassword", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, user.ErrMismatchedHashAndPassword.Category)
		assert.Equal(t, user.TextCodeInvalidCreds, user.ErrMismatchedHashAndPassword.TextCode)
	})

	t.Run("ErrNoEmptyString", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, user.ErrNoEmptyString.Category)
		assert.Equal(t, user.TextCodeEmptyPassword, user.ErrNoEmptyString.TextCode)
	})

	t.Run("ErrNotSupported", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryMethodNotAllowed, user.ErrNotSupported.Category)
		assert.Equal(t, user.TextCodeNotSupported, user.ErrNotSupported.TextCode)
	})

	t.Run("ErrSessionExpired", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, user.ErrSessionExpired.Category)
		assert.Equal(t, user.TextCodeSessionExpired, user.ErrSessionExpired.TextCode)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, user.IsNotFound(user.ErrIdentityNotFound))
	assert.True(t, user.IsNotFound(user.ErrTokenNotFound))
	assert.False(t, user.IsNotFound(user.ErrMismatchedHashAndPassword))
	assert.False(t, user.IsNotFound(errors.New("boom")))
	assert.False(t, user.IsNotFound(nil))
}
