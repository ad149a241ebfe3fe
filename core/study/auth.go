package study

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core"
)

var (
	// ErrAuthenticationFailed is deliberately opaque: it never discloses
	// which of name/password was wrong.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// CredentialVerifier checks a supplied password against a user's stored
// credential. The tracker ships PlainVerifier for compatibility with durable
// stores written by previous versions; a hashed implementation can be swapped
// in here without touching any call site.
type CredentialVerifier interface {
	Verify(usr User, password string) error
}

// PlainVerifier compares passwords byte for byte, in plaintext.
type PlainVerifier struct{}

var _ CredentialVerifier = (*PlainVerifier)(nil)

func (PlainVerifier) Verify(usr User, password string) error {
	if usr.Password != password {
		return ErrAuthenticationFailed
	}
	return nil
}

// Login matches the supplied name against User.Name, case-insensitively and
// whitespace-trimmed, and verifies the password of the first user whose name
// matches. First match wins when names collide; duplicate names behind the
// first are unreachable at login.
//
// On success the session user is set (and persisted). On failure the session
// is untouched and ErrAuthenticationFailed is returned.
func (svc *Service) Login(name, password string) (User, error) {
	name = core.CleanString(name, true /* lower */)
	for _, usr := range svc.store.Users() {
		if strings.ToLower(strings.TrimSpace(usr.Name)) != name {
			continue
		}
		if err := svc.verifier.Verify(usr, password); err != nil {
			return User{}, err
		}
		svc.store.SetSessionUser(usr)
		return usr, nil
	}
	return User{}, ErrAuthenticationFailed
}

// Logout clears the active session. Transient login-form state is the
// presentation layer's to reset.
func (svc *Service) Logout() {
	svc.store.ClearSessionUser()
}
