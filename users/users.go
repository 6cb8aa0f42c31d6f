package users

import "github.com/jrsteele09/go-session-gateway/internal/utils"

// Profile is the signed-in principal as returned by the backend. It is replaced wholesale on every
// fetch or update, never merged field by field.
type Profile struct {
	ID         int64   `json:"id"`                   // Backend primary key
	Email      string  `json:"email"`                // Read-only on the backend
	FullName   string  `json:"full_name"`            // Editable
	Company    string  `json:"company"`              // Editable
	GSTNumber  *string `json:"gst_number,omitempty"` // Optional tax identifier, editable
	UserID     string  `json:"user_id"`              // Externally issued identifier, e.g. USR-1A2B3C4D
	IsVerified bool    `json:"is_verified"`          // Read-only on the backend
}

// Clone returns a deep copy so callers cannot alias cached state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.GSTNumber = utils.CloneValue(p.GSTNumber)
	return &c
}

// DisplayName prefers the full name and falls back to the email address.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// GST returns the tax identifier or "" when none is set.
func (p *Profile) GST() string {
	return utils.Value(p.GSTNumber)
}

// ProfileUpdate carries the editable profile fields for PUT /profile/.
type ProfileUpdate struct {
	FullName  string  `json:"full_name"`
	Company   string  `json:"company"`
	GSTNumber *string `json:"gst_number,omitempty"`
}

// SignUpRequest creates an account. It never yields tokens.
type SignUpRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Company  string `json:"company"`
	Password string `json:"password"`
}

// SignUpResponse is the backend's confirmation, e.g. "Account created successfully".
type SignUpResponse struct {
	Message string `json:"message"`
}

// Credentials are exchanged for tokens at POST /signin/.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is the body of a successful POST /signin/.
type SignInResponse struct {
	// Access is the bearer credential attached to every authorized call.
	Access string `json:"access"`

	// Refresh is persisted alongside Access but never exchanged by this client.
	Refresh string `json:"refresh"`

	// ExpiresIn is the access token lifetime in seconds, when the backend reports it.
	ExpiresIn *int `json:"expires_in,omitempty"`

	// User is the principal the tokens were issued to.
	User *Profile `json:"user"`
}
