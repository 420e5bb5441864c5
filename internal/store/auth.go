package store

import (
	"errors"
	"syscall"

	"github.com/skyflydev/threadly-go/pkg/apperr"
	"github.com/skyflydev/threadly-go/pkg/result"
)

const (
	keyAuthToken = "auth_token"
	keyUserID    = "user_id"
)

// AuthData is the persisted credential pair. The auth layer is its sole
// owner: it is written on sign-in/sign-up and removed on sign-out or
// detected authorization loss.
type AuthData struct {
	Token  string
	UserID string
}

// AuthStore persists AuthData in the key-value store. A missing credential
// is a normal error path, not a crash.
type AuthStore struct {
	kv *KV
}

// NewAuthStore wraps the key-value store with the auth-data slot.
func NewAuthStore(kv *KV) *AuthStore {
	return &AuthStore{kv: kv}
}

// Save persists the credential pair.
func (a *AuthStore) Save(data AuthData) result.Result[result.Unit] {
	if err := a.kv.Set(keyAuthToken, data.Token); err != nil {
		return result.Err[result.Unit](classifyLocal(err))
	}
	if err := a.kv.Set(keyUserID, data.UserID); err != nil {
		return result.Err[result.Unit](classifyLocal(err))
	}
	return result.Ok(result.Unit{})
}

// Load returns the persisted credentials, or an error when either slot is
// absent.
func (a *AuthStore) Load() result.Result[AuthData] {
	token, okToken, err := a.kv.Get(keyAuthToken)
	if err != nil {
		return result.Err[AuthData](classifyLocal(err))
	}
	userID, okUser, err := a.kv.Get(keyUserID)
	if err != nil {
		return result.Err[AuthData](classifyLocal(err))
	}
	if !okToken || !okUser {
		return result.Err[AuthData](apperr.Unknown("auth data not found"))
	}
	return result.Ok(AuthData{Token: token, UserID: userID})
}

// Clear removes both credential slots.
func (a *AuthStore) Clear() result.Result[result.Unit] {
	if err := a.kv.Delete(keyAuthToken); err != nil {
		return result.Err[result.Unit](classifyLocal(err))
	}
	if err := a.kv.Delete(keyUserID); err != nil {
		return result.Err[result.Unit](classifyLocal(err))
	}
	return result.Ok(result.Unit{})
}

func classifyLocal(err error) *apperr.Error {
	if errors.Is(err, syscall.ENOSPC) {
		return apperr.DiskFull()
	}
	return apperr.LocalUnknown()
}
