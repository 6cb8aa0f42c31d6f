package credentials

import (
	"strings"

	"github.com/pkg/errors"
)

var _ Store = (*Namespaced)(nil)

// Namespaced stores the session keys under "<namespace>:<key>" in a Backend.
type Namespaced struct {
	backend   Backend
	namespace string
}

// NewNamespaced returns a Store over backend. An empty namespace selects DefaultNamespace.
func NewNamespaced(backend Backend, namespace string) *Namespaced {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Namespaced{
		backend:   backend,
		namespace: namespace,
	}
}

// Namespace returns the prefix applied to every session key.
func (s *Namespaced) Namespace() string {
	return s.namespace
}

// BackendKey returns the key used in the backend for a session key.
func (s *Namespaced) BackendKey(key string) string {
	return s.namespace + ":" + key
}

func (s *Namespaced) resolve(key string) (string, error) {
	if !isSessionKey(key) {
		return "", errors.Wrapf(ErrUnknownKey, "%q", key)
	}
	return s.BackendKey(key), nil
}

func (s *Namespaced) Get(key string) (string, bool, error) {
	k, err := s.resolve(key)
	if err != nil {
		return "", false, err
	}
	value, ok, err := s.backend.Get(k)
	if err != nil {
		return "", false, errors.Wrapf(err, "[credentials Get] %s", key)
	}
	return value, ok, nil
}

func (s *Namespaced) Set(key, value string) error {
	k, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.backend.Set(k, value); err != nil {
		return errors.Wrapf(err, "[credentials Set] %s", key)
	}
	return nil
}

func (s *Namespaced) Remove(key string) error {
	k, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(k); err != nil {
		return errors.Wrapf(err, "[credentials Remove] %s", key)
	}
	return nil
}

// Clear attempts every session key even if one fails and returns the first error.
func (s *Namespaced) Clear() error {
	var first error
	for _, key := range SessionKeys() {
		if err := s.backend.Delete(s.BackendKey(key)); err != nil && first == nil {
			first = errors.Wrapf(err, "[credentials Clear] %s", key)
		}
	}
	return first
}
