// Package user implements registration, authentication-identity resolution,
// and the email-confirmation / password-reset token lifecycle as a plug-in
// component for host web applications.
//
// Registration lifecycle:
//   - SignupForm validates untrusted input (trimmed email, password policy,
//     optional username) with field-scoped errors, tolerating placeholder
//     records (reserved accounts without credentials) during the uniqueness
//     check.
//   - Accounts.Register persists a brand-new record; with confirmation
//     enabled it issues a single-use confirmation code, otherwise the account
//     is confirmed immediately and logged in through the SessionHost.
//   - Accounts.Confirm redeems the code exactly once. Absent and expired
//     codes are deliberately indistinguishable to callers.
//
// Password resets use a token whose issue time is suffix-encoded into the
// token itself; validity is a pure function of the token string and the
// configured expiry window.
//
// Persistence is Bun-backed (Users and Tokens repositories behind a
// RepositoryManager); collaborators such as the session layer, mail
// transport, and request metadata stay behind small interfaces owned by the
// host.
package user
