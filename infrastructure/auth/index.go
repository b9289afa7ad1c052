package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"mruput.io/infrastructure/database/repository/cache"
	"mruput.io/infrastructure/logger"
)

var (
	ErrInvalidToken = errors.New("invalid token used")
	ErrRevokedToken = errors.New("this session has been signed out")
)

// TokenVerifier checks employee access tokens issued by the HR identity
// provider. Tokens are signed with a shared HS256 secret or, when JWKS_URL is
// set, with the provider's published RS256 keys.
type TokenVerifier struct {
	Issuer string
	secret []byte
	jwks   *keyfunc.JWKS
}

var Verifier *TokenVerifier

func InitialiseTokenVerifier() {
	verifier, err := NewTokenVerifier(os.Getenv("JWT_ISSUER"), os.Getenv("JWT_SIGNING_KEY"), os.Getenv("JWKS_URL"))
	if err != nil {
		logger.Error("could not set up token verifier", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}
	Verifier = verifier
}

func NewTokenVerifier(issuer string, secret string, jwksURL string) (*TokenVerifier, error) {
	verifier := &TokenVerifier{Issuer: issuer, secret: []byte(secret)}
	if jwksURL == "" {
		if secret == "" {
			return nil, errors.New("either JWT_SIGNING_KEY or JWKS_URL must be set")
		}
		return verifier, nil
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx: context.Background(),
		RefreshErrorHandler: func(err error) {
			logger.Error("there was an error with the jwt.Keyfunc", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		},
		RefreshInterval:   time.Hour * 6,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS from resource at the given URL: %w", err)
	}
	verifier.jwks = jwks
	return verifier, nil
}

func (v *TokenVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if v.jwks != nil {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return v.secret, nil
}

func (v *TokenVerifier) DecodeAuthToken(ctx context.Context, tokenString string) (*ClaimsData, error) {
	claims := &employeeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("invalid token signature used")
		}
		logger.Error("error decoding jwt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if v.Issuer != "" && !claims.VerifyIssuer(v.Issuer, true) {
		logger.Warning("attempt to access attendance with tampered jwt", logger.LoggerOptions{
			Key:  "issuer",
			Data: claims.Issuer,
		})
		return nil, ErrInvalidToken
	}
	if claims.ID != "" && cache.Cache.FindOne(ctx, revokedKey(claims.ID)) != nil {
		return nil, ErrRevokedToken
	}
	return claims.toClaimsData(), nil
}

// Close stops the background JWKS refresh.
func (v *TokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// GenerateAuthToken signs an HS256 employee token. It backs local tooling and
// tests; production tokens come from the identity provider.
func GenerateAuthToken(claimsData ClaimsData, signingKey string) (*string, error) {
	claims := employeeClaims{
		Email:    claimsData.Email,
		Name:     claimsData.Name,
		OfficeID: claimsData.OfficeID,
		DeviceID: claimsData.DeviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    claimsData.Issuer,
			Subject:   claimsData.UserID,
			ID:        claimsData.TokenID,
			ExpiresAt: jwt.NewNumericDate(time.Unix(claimsData.ExpiresAt, 0)),
			IssuedAt:  jwt.NewNumericDate(time.Unix(claimsData.IssuedAt, 0)),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		return nil, err
	}
	return &tokenString, nil
}

// SignOutUser revokes a token id until the token would have expired anyway.
func SignOutUser(ctx context.Context, tokenID string, expiresAt int64, reason string) {
	logger.Info("employee signout initiated", logger.LoggerOptions{
		Key:  "reason",
		Data: reason,
	})
	ttl := time.Until(time.Unix(expiresAt, 0))
	if ttl <= 0 {
		return
	}
	if !cache.Cache.CreateEntry(ctx, revokedKey(tokenID), reason, ttl) {
		logger.Error("failed to sign out user", logger.LoggerOptions{
			Key:  "tokenID",
			Data: tokenID,
		})
	}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("%s-revoked", tokenID)
}
