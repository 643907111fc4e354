package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/models"
)

type fakeProvider struct {
	result *models.SignInResult
	tokens *models.Tokens
	user   *models.User
	err    error
}

func (f *fakeProvider) SignIn(context.Context, string, string) (*models.SignInResult, error) {
	return f.result, f.err
}

func (f *fakeProvider) RespondToNewPasswordChallenge(context.Context, string, string, string) (*models.SignInResult, error) {
	return f.result, f.err
}

func (f *fakeProvider) Refresh(context.Context, string) (*models.Tokens, error) {
	return f.tokens, f.err
}

func (f *fakeProvider) GetUser(context.Context, string) (*models.User, error) {
	return f.user, f.err
}

func TestSignInValidation(t *testing.T) {
	svc := NewAuthService(&fakeProvider{})
	_, err := svc.SignIn(context.Background(), &models.SignInRequest{Username: "alice"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Username and password are required.", reqErr.Message)
}

func TestSignInTranslatesProviderErrors(t *testing.T) {
	raw := &smithy.GenericAPIError{Code: "UserNotConfirmedException", Message: "User is not confirmed."}
	svc := NewAuthService(&fakeProvider{err: raw})

	_, err := svc.SignIn(context.Background(), &models.SignInRequest{Username: "alice", Password: "pw"})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, "User is not confirmed", authErr.Message)
	assert.ErrorIs(t, err, raw)
}

func TestRespondToChallengeDefaultMessage(t *testing.T) {
	svc := NewAuthService(&fakeProvider{err: errors.New("boom")})

	_, err := svc.RespondToChallenge(context.Background(), &models.ChallengeRequest{})
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Missing required parameters.", reqErr.Message)

	_, err = svc.RespondToChallenge(context.Background(), &models.ChallengeRequest{Username: "a", NewPassword: "b", Session: "c"})
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Password change failed.", authErr.Message)
}

func TestRefreshAndGetUser(t *testing.T) {
	svc := NewAuthService(&fakeProvider{
		tokens: &models.Tokens{AccessToken: "a", RefreshToken: "r"},
		user:   &models.User{Username: "alice"},
	})

	tokens, err := svc.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: "r"})
	require.NoError(t, err)
	assert.Equal(t, "r", tokens.RefreshToken)

	_, err = svc.Refresh(context.Background(), &models.RefreshRequest{})
	assert.EqualError(t, err, "Missing refresh token.")

	user, err := svc.GetUser(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetUser(context.Background(), "")
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)

	failing := NewAuthService(&fakeProvider{err: errors.New("expired")})
	_, err = failing.GetUser(context.Background(), "a")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusInternalServerError, authErr.Status)
	assert.Equal(t, "Failed to get user info", authErr.Message)
}
