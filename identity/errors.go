package identity

import (
	"errors"

	"github.com/aws/smithy-go"
)

// SignInErrors maps provider exception names to messages shown on sign-in.
var SignInErrors = map[string]string{
	"NotAuthorizedException":         "Invalid username or password",
	"UserNotConfirmedException":      "User is not confirmed",
	"PasswordResetRequiredException": "Password reset required",
	"UserNotFoundException":          "User not found",
	"TooManyRequestsException":       "Too many requests, try again later",
}

// ChallengeErrors maps provider exception names to messages shown when
// answering a password challenge.
var ChallengeErrors = map[string]string{
	"InvalidPasswordException": "Password does not meet requirements",
	"CodeMismatchException":    "Invalid session, sign in again",
	"ExpiredCodeException":     "Session expired, sign in again",
}

const (
	DefaultSignInMessage    = "Sign in failed."
	DefaultChallengeMessage = "Password change failed."
)

// ErrorName returns the provider's exception name for err, or "Unknown".
func ErrorName(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return apiErr.ErrorCode()
	}
	return "Unknown"
}

// Translate looks the exception name of err up in table.
func Translate(err error, table map[string]string, fallback string) string {
	if msg, ok := table[ErrorName(err)]; ok {
		return msg
	}
	return fallback
}
