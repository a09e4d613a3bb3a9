package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/training-import/pkg/errors"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "training-import", Expiry: time.Hour})

	token, err := svc.Issue("operator-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Operator)
	assert.Equal(t, "operator-1", claims.Subject)
}

func TestTokenServiceRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "other", Expiry: time.Hour})
	token, err := issuer.Issue("operator-1")
	require.NoError(t, err)

	svc := NewTokenService(TokenConfig{Secret: "secret", Expiry: time.Hour})
	_, err = svc.ValidateToken(token.AccessToken)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	own, err := svc.Issue("operator-1")
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(own.AccessToken)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceRequiresOperator(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	_, err := svc.Issue(" ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
