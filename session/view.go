package session

import "github.com/jrsteele09/go-session-gateway/users"

// View is the observable projection of the session. It is rebuilt from the credential store on
// Hydrate and never persisted.
type View struct {
	User    *users.Profile
	Loading bool
	Error   string
}

// Phase is the state machine position a View corresponds to.
type Phase int

const (
	Anonymous Phase = iota
	Authenticating
	Authenticated
	Refreshing
	Failed
)

func (p Phase) String() string {
	switch p {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Phase derives the state from the view. Loading wins over an error, and an error wins over a
// cached user.
func (v View) Phase() Phase {
	switch {
	case v.Loading && v.User == nil:
		return Authenticating
	case v.Loading:
		return Refreshing
	case v.Error != "":
		return Failed
	case v.User != nil:
		return Authenticated
	default:
		return Anonymous
	}
}

// Authenticated reports whether the view carries a principal.
func (v View) Authenticated() bool {
	return v.User != nil
}
