package service

import (
	"context"
	"net/http"

	"github.com/apex/log"

	"price-tracker/identity"
	"price-tracker/models"
)

// AuthError is an identity-provider failure with a user-facing message.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthService adapts the identity provider to the auth endpoints.
type AuthService struct {
	provider identity.Provider
}

func NewAuthService(provider identity.Provider) *AuthService {
	return &AuthService{provider: provider}
}

func (s *AuthService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.SignInResult, error) {
	if req.Username == "" || req.Password == "" {
		return nil, badRequest("Username and password are required.")
	}

	result, err := s.provider.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		log.WithError(err).WithField("error_name", identity.ErrorName(err)).Warn("sign in failed")
		return nil, &AuthError{
			Status:  http.StatusBadRequest,
			Message: identity.Translate(err, identity.SignInErrors, identity.DefaultSignInMessage),
			Err:     err,
		}
	}
	return result, nil
}

func (s *AuthService) RespondToChallenge(ctx context.Context, req *models.ChallengeRequest) (*models.SignInResult, error) {
	if req.Username == "" || req.NewPassword == "" || req.Session == "" {
		return nil, badRequest("Missing required parameters.")
	}

	result, err := s.provider.RespondToNewPasswordChallenge(ctx, req.Username, req.NewPassword, req.Session)
	if err != nil {
		log.WithError(err).WithField("error_name", identity.ErrorName(err)).Warn("password challenge failed")
		return nil, &AuthError{
			Status:  http.StatusBadRequest,
			Message: identity.Translate(err, identity.ChallengeErrors, identity.DefaultChallengeMessage),
			Err:     err,
		}
	}
	return result, nil
}

func (s *AuthService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.Tokens, error) {
	if req.RefreshToken == "" {
		return nil, badRequest("Missing refresh token.")
	}

	tokens, err := s.provider.Refresh(ctx, req.RefreshToken)
	if err != nil {
		log.WithError(err).Warn("token refresh failed")
		return nil, &AuthError{Status: http.StatusBadRequest, Message: "Failed to refresh tokens", Err: err}
	}
	return tokens, nil
}

func (s *AuthService) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, &RequestError{Status: http.StatusUnauthorized, Message: "Missing access token"}
	}

	user, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		log.WithError(err).Warn("failed to get user")
		return nil, &AuthError{Status: http.StatusInternalServerError, Message: "Failed to get user info", Err: err}
	}
	return user, nil
}
