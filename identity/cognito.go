package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"price-tracker/models"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrChallengeFailed      = errors.New("challenge response failed")
	ErrRefreshFailed        = errors.New("token refresh failed")
)

// Provider is the identity provider as seen by the auth endpoints.
type Provider interface {
	SignIn(ctx context.Context, username, password string) (*models.SignInResult, error)
	RespondToNewPasswordChallenge(ctx context.Context, username, newPassword, session string) (*models.SignInResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
}

// CognitoAPI is the part of the Cognito user pool client used here.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	GetUser(ctx context.Context, params *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
}

// Cognito implements Provider on top of a Cognito user pool app client.
type Cognito struct {
	api      CognitoAPI
	clientID string
}

func NewCognito(api CognitoAPI, clientID string) *Cognito {
	return &Cognito{api: api, clientID: clientID}
}

func (c *Cognito) SignIn(ctx context.Context, username, password string) (*models.SignInResult, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, err
	}

	if out.ChallengeName != "" {
		return &models.SignInResult{
			Challenge: &models.Challenge{
				ChallengeName:       string(out.ChallengeName),
				Session:             aws.ToString(out.Session),
				ChallengeParameters: out.ChallengeParameters,
			},
		}, nil
	}

	if out.AuthenticationResult == nil {
		return nil, ErrAuthenticationFailed
	}
	return c.session(ctx, out.AuthenticationResult)
}

func (c *Cognito) RespondToNewPasswordChallenge(ctx context.Context, username, newPassword, session string) (*models.SignInResult, error) {
	out, err := c.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(c.clientID),
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		Session:       aws.String(session),
		ChallengeResponses: map[string]string{
			"USERNAME":     username,
			"NEW_PASSWORD": newPassword,
		},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, ErrChallengeFailed
	}
	return c.session(ctx, out.AuthenticationResult)
}

// Refresh exchanges a refresh token for new access and id tokens. The
// refresh token itself is returned unchanged.
func (c *Cognito) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeRefreshTokenAuth,
		ClientId:       aws.String(c.clientID),
		AuthParameters: map[string]string{"REFRESH_TOKEN": refreshToken},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, ErrRefreshFailed
	}
	return &models.Tokens{
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		IDToken:      aws.ToString(out.AuthenticationResult.IdToken),
		RefreshToken: refreshToken,
	}, nil
}

func (c *Cognito) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	out, err := c.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:   aws.ToString(out.Username),
		Attributes: make([]models.UserAttribute, 0, len(out.UserAttributes)),
	}
	for _, a := range out.UserAttributes {
		user.Attributes = append(user.Attributes, models.UserAttribute{
			Name:  aws.ToString(a.Name),
			Value: aws.ToString(a.Value),
		})
	}
	return user, nil
}

func (c *Cognito) session(ctx context.Context, result *types.AuthenticationResultType) (*models.SignInResult, error) {
	tokens := &models.Tokens{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
	}

	user, err := c.GetUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &models.SignInResult{User: user, Tokens: tokens}, nil
}
