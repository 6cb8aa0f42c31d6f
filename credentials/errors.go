package credentials

import "errors"

var (
	ErrUnknownKey    = errors.New("not a session key")
	ErrNoAccessToken = errors.New("no access token")
	ErrInvalidKey    = errors.New("encryption key must be 32 bytes")
	ErrCorruptValue  = errors.New("stored value could not be decrypted")
)
