package session

import (
	"errors"
)

var (
	// ErrNotAuthenticated is returned before any network call when no access token is stored.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSignInFailed matches every *SignInFailedError.
	ErrSignInFailed = errors.New("sign in failed")

	// ErrSessionReset is returned by an operation whose result arrived after a logout. The result is
	// discarded: nothing is persisted and the view is left as logout set it.
	ErrSessionReset = errors.New("session was reset while the operation was in flight")

	errIncompleteSignIn = errors.New("sign in response is missing the access token or user")
)

// SignInFailedError reports a failed sign in. Its message is exactly the message of the underlying
// error, so a backend detail such as "Invalid credentials" reaches the caller unchanged.
type SignInFailedError struct {
	Err error
}

func (e *SignInFailedError) Error() string {
	return e.Err.Error()
}

func (e *SignInFailedError) Unwrap() error { return e.Err }

func (e *SignInFailedError) Is(target error) bool { return target == ErrSignInFailed }
