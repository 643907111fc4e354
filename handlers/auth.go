package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"price-tracker/models"
	"price-tracker/service"
)

// respondAuthError writes identity-provider failures with the friendly
// message and the raw provider error.
func respondAuthError(c *gin.Context, err error) {
	var authErr *service.AuthError
	if !errors.As(err, &authErr) {
		respondError(c, err)
		return
	}

	resp := models.AuthErrorResponse{Message: authErr.Message}
	if authErr.Err != nil {
		resp.Error = authErr.Err.Error()
	}
	if authErr.Status == http.StatusBadRequest {
		resp.StatusCode = authErr.Status
	}
	c.JSON(authErr.Status, resp)
}

// bindAuthBody decodes an auth request body. An empty body is left to the
// required-fields check; anything else that fails to decode is a 400.
func bindAuthBody(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	log.WithError(err).WithField("path", c.FullPath()).Warn("malformed auth request body")
	c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "Invalid request body"})
	return false
}

func sessionResponse(c *gin.Context, result *models.SignInResult) {
	if result.Challenge != nil {
		c.JSON(http.StatusOK, models.ChallengeResponse{
			Challenge:              *result.Challenge,
			RequiresPasswordChange: result.Challenge.ChallengeName == "NEW_PASSWORD_REQUIRED",
		})
		return
	}
	c.JSON(http.StatusOK, models.SessionResponse{User: result.User, Tokens: result.Tokens})
}

// SignIn handles username/password sign-in.
func (h *Handlers) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !bindAuthBody(c, &req) {
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), &req)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	sessionResponse(c, result)
}

func (h *Handlers) RespondToChallenge(c *gin.Context) {
	var req models.ChallengeRequest
	if !bindAuthBody(c, &req) {
		return
	}

	result, err := h.auth.RespondToChallenge(c.Request.Context(), &req)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	sessionResponse(c, result)
}

func (h *Handlers) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if !bindAuthBody(c, &req) {
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), &req)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

func (h *Handlers) GetUser(c *gin.Context) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

	user, err := h.auth.GetUser(c.Request.Context(), token)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
