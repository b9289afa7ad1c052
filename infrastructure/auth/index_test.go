package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims ClaimsData, key string) string {
	t.Helper()
	token, err := GenerateAuthToken(claims, key)
	require.NoError(t, err)
	return *token
}

func validClaims() ClaimsData {
	now := time.Now()
	return ClaimsData{
		Issuer:    "mruput-hr",
		UserID:    "emp-1",
		Email:     "ada@mruput.io",
		Name:      "Ada",
		OfficeID:  "hq",
		DeviceID:  "device-1",
		TokenID:   "tok-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestDecodeAuthToken(t *testing.T) {
	verifier, err := NewTokenVerifier("mruput-hr", "secret", "")
	require.NoError(t, err)
	ctx := context.Background()

	claims, err := verifier.DecodeAuthToken(ctx, sign(t, validClaims(), "secret"))
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims.UserID)
	assert.Equal(t, "hq", claims.OfficeID)
	assert.Equal(t, "device-1", claims.DeviceID)
	assert.Equal(t, "tok-1", claims.TokenID)

	_, err = verifier.DecodeAuthToken(ctx, sign(t, validClaims(), "other-secret"))
	assert.Error(t, err)

	foreign := validClaims()
	foreign.Issuer = "someone-else"
	_, err = verifier.DecodeAuthToken(ctx, sign(t, foreign, "secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := validClaims()
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	_, err = verifier.DecodeAuthToken(ctx, sign(t, expired, "secret"))
	assert.Error(t, err)

	anonymous := validClaims()
	anonymous.UserID = ""
	_, err = verifier.DecodeAuthToken(ctx, sign(t, anonymous, "secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeAuthToken_RejectsUnexpectedAlgorithm(t *testing.T) {
	verifier, err := NewTokenVerifier("", "secret", "")
	require.NoError(t, err)

	claims := validClaims()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, employeeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
		},
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.DecodeAuthToken(context.Background(), unsigned)
	assert.Error(t, err)
}
