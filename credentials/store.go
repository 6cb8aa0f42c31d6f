// Package credentials persists the tokens and cached profile of the current session.
//
// Every component reaches persistence through the Store interface only. The key set is fixed:
// sign-in writes KeyAccessToken, KeyRefreshToken and KeyUser, hydration and the request gateway
// read them, and logout clears exactly these keys and nothing else.
package credentials

// Canonical session keys.
const (
	KeyAccessToken  = "access_token"  // Short-lived bearer credential
	KeyRefreshToken = "refresh_token" // Persisted, never exchanged
	KeyUser         = "user"          // JSON encoded users.Profile
)

// DefaultNamespace prefixes session keys when no namespace is configured.
const DefaultNamespace = "session"

// SessionKeys returns the canonical key set owned by the session.
func SessionKeys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyUser}
}

func isSessionKey(key string) bool {
	for _, k := range SessionKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Store is the credential store used by the session store (read/write) and the gateway (read only).
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)

	// Set writes value under key. A following Get observes the value immediately.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Clear removes every session key and leaves all other data untouched
	Clear() error
}

// Backend is the raw storage mechanism underneath a Store. It may be shared with
// unrelated application data, which is why Store namespaces its keys.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
