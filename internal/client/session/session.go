// Package session holds the client-session-scoped security state: which
// artifacts are unlocked, which secrets have been revealed, and the vault
// master password. None of it is ever persisted; restarting the client
// resets every artifact to locked and requires the master password to be
// re-entered.
package session

import (
	"strings"
	"sync"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/common"
	"github.com/authenta/authenta/internal/cryptox"
	"github.com/authenta/authenta/internal/identity"
)

// Session is the explicit lifecycle object for one user's unlocked state.
// Created when the user signs in, discarded on sign-out or process exit.
type Session struct {
	user identity.User

	mu             sync.Mutex
	unlocked       map[string]struct{}
	revealed       map[string]string
	masterPassword []byte
}

// New creates a fresh, fully locked session for the given user.
func New(user identity.User) *Session {
	return &Session{
		user:     user,
		unlocked: make(map[string]struct{}),
		revealed: make(map[string]string),
	}
}

// User returns the identity this session belongs to.
func (s *Session) User() identity.User { return s.user }

// ResolveUnlock decides whether the presented credential satisfies the
// artifact's access gate and, on success, records the artifact as unlocked
// for the rest of the session.
//
// The gate kind is matched explicitly: a password gate accepts only the
// password whose digest equals the gate value; a self-hash gate accepts
// only the literal fingerprint string. Both rejections surface the same
// generic ErrAuthenticationFailed so a caller cannot tell which check
// failed.
func (s *Session) ResolveUnlock(a *models.Artifact, credential string) error {
	switch a.Gate.Kind {
	case models.GateNone:
		// Unlocked unconditionally on first view.
		s.markUnlocked(a.ID)
		return nil

	case models.GatePasswordHash:
		if cryptox.Digest([]byte(credential)) == a.Gate.Value {
			s.markUnlocked(a.ID)
			return nil
		}

	case models.GateSelfHash:
		if strings.TrimSpace(credential) == a.Gate.Value {
			s.markUnlocked(a.ID)
			return nil
		}
	}

	return common.ErrAuthenticationFailed
}

func (s *Session) markUnlocked(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked[id] = struct{}{}
}

// Unlocked reports whether the artifact has been unlocked in this session.
func (s *Session) Unlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unlocked[id]
	return ok
}

// Lock forgets the unlocked state for one artifact. It does not invalidate
// the underlying gate; the same credential unlocks it again.
func (s *Session) Lock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unlocked, id)
	delete(s.revealed, id)
}

// RevealSecret caches a secret (decrypted vault password, one-time key)
// for re-display during the session.
func (s *Session) RevealSecret(id, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealed[id] = secret
}

// RevealedSecret returns the cached secret for id, if any.
func (s *Session) RevealedSecret(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.revealed[id]
	return secret, ok
}

// SetMasterPassword stores the vault master password for the duration of
// the session. A copy is kept so the caller may wipe its own buffer.
func (s *Session) SetMasterPassword(pw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.masterPassword)
	s.masterPassword = append([]byte(nil), pw...)
}

// MasterPassword returns the session master password, or false if the
// vault has not been unlocked this session.
func (s *Session) MasterPassword() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masterPassword == nil {
		return "", false
	}
	return string(s.masterPassword), true
}

// End wipes the master password and clears all unlocked/revealed state.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.masterPassword)
	s.masterPassword = nil
	s.unlocked = make(map[string]struct{})
	s.revealed = make(map[string]string)
}
