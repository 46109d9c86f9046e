package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguapersonal/backend/config"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestService(expiry time.Duration) *Service {
	return NewService(&config.Config{
		JWT: config.JWTConfig{
			SecretKey:    testSigningKey,
			Algorithm:    "HS256",
			AccessExpiry: expiry,
			Issuer:       "linguapersonal-tests",
		},
	}, nil)
}

func TestService_GenerateAndValidate_RoundTrip(t *testing.T) {
	svc := newTestService(30 * time.Minute)

	token, err := svc.GenerateToken("a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, "linguapersonal-tests", claims.Issuer)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, err := svc.GenerateToken("a@b.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_ValidateToken_Malformed(t *testing.T) {
	svc := newTestService(30 * time.Minute)

	claims, err := svc.ValidateToken("not-a-jwt")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestService_ValidateToken_WrongKey(t *testing.T) {
	svc := newTestService(30 * time.Minute)

	other := NewService(&config.Config{
		JWT: config.JWTConfig{
			SecretKey:    "ffffffffffffffffffffffffffffffff",
			Algorithm:    "HS256",
			AccessExpiry: 30 * time.Minute,
			Issuer:       "linguapersonal-tests",
		},
	}, nil)

	token, err := other.GenerateToken("a@b.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestService_ValidateToken_NoneAlgorithmRejected(t *testing.T) {
	svc := newTestService(30 * time.Minute)

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{
		"email": "a@b.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.Nil(t, claims)
	require.Error(t, err)
}

func TestService_ValidateToken_MissingExpiryRejected(t *testing.T) {
	svc := newTestService(30 * time.Minute)

	noExp := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"email": "a@b.com",
	})
	token, err := noExp.SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.Nil(t, claims)
	require.Error(t, err)
}
