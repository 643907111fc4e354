package models

// SignInRequest is the body of the sign-in endpoint
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChallengeRequest answers a NEW_PASSWORD_REQUIRED challenge
type ChallengeRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
	Session     string `json:"session"`
}

// RefreshRequest is the body of the token refresh endpoint
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Tokens is the token set issued by the identity provider
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserAttribute is a single name/value attribute of an identity
type UserAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// User is the identity provider's view of the signed-in user
type User struct {
	Username   string          `json:"username"`
	Attributes []UserAttribute `json:"attributes"`
}

// Attribute returns the value of the named attribute, or "" if absent
func (u *User) Attribute(name string) string {
	for _, a := range u.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Challenge describes an additional step the identity provider requires
type Challenge struct {
	ChallengeName       string            `json:"challengeName"`
	Session             string            `json:"session"`
	ChallengeParameters map[string]string `json:"challengeParameters"`
}

// SignInResult is either a pending challenge or an authenticated session
type SignInResult struct {
	Challenge *Challenge
	User      *User
	Tokens    *Tokens
}

// ChallengeResponse is returned when sign-in needs another step
type ChallengeResponse struct {
	Challenge              Challenge `json:"challenge"`
	RequiresPasswordChange bool      `json:"requiresPasswordChange"`
}

// SessionResponse is returned after a successful sign-in or challenge
type SessionResponse struct {
	User   *User   `json:"user"`
	Tokens *Tokens `json:"tokens"`
}

// AuthErrorResponse carries a friendly message and the raw provider error
type AuthErrorResponse struct {
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

// MessageResponse is a plain message envelope
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse echoes an unexpected failure
type ErrorResponse struct {
	Error string `json:"error"`
}
