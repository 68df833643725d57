package user

// UserIdentity adapts a User into the Identity contract consumed by the host
// session system.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Username returns the user's username.
func (u UserIdentity) Username() string {
	if u.user == nil {
		return ""
	}
	return u.user.Username
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// AuthKey returns the user's long-lived session validation secret.
func (u UserIdentity) AuthKey() string {
	if u.user == nil {
		return ""
	}
	return u.user.AuthKey
}

// ValidateAuthKey checks a cookie-provided key against the stored secret.
func (u UserIdentity) ValidateAuthKey(key string) bool {
	if u.user == nil {
		return false
	}
	return u.user.ValidateAuthKey(key)
}
