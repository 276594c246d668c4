package model

// OAuth provider names accepted by the auth routes.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User is a doctor account. An account holds at least one authentication
// method: a password hash, or a linked OAuth provider id. Accounts created
// through an OAuth callback have no password hash and cannot use local login.
type User struct {
	Base
	Email        *string `json:"email" db:"email"`
	PasswordHash *string `json:"-" db:"password_hash"`
	GoogleID     *string `json:"google_id,omitempty" db:"google_id"`
	FacebookID   *string `json:"facebook_id,omitempty" db:"facebook_id"`
}

// HasLocalLogin reports whether the user can authenticate with a password.
func (u *User) HasLocalLogin() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// SignupRequest represents local account creation parameters
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents local login parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an issued bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// OAuthProfile is the subset of a provider userinfo response the account
// linking flow needs.
type OAuthProfile struct {
	ProviderID string
	Email      string
}
