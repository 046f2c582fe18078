package jwt_test

import (
	"testing"
	"time"

	"catalog-system/config"
	"catalog-system/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})

	token, tokenID, err := svc.GenerateAccessToken(7, "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, jwt.AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer := jwt.NewJWTService(config.JWTConfig{Secret: "one", AccessExpiry: time.Minute})
	verifier := jwt.NewJWTService(config.JWTConfig{Secret: "two", AccessExpiry: time.Minute})

	token, _, err := issuer.GenerateAccessToken(1, "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "secret", RefreshExpiry: -time.Minute})

	token, _, err := svc.GenerateRefreshToken(1, "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
