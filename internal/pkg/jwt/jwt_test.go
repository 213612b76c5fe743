package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_RoundTrip(t *testing.T) {
	svc := New("test-secret", "authenticated", time.Hour)

	token, err := svc.GenerateToken("identity-1", "Alice@Example.com")
	require.NoError(t, err)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "identity-1", id.ID)
	assert.Equal(t, "alice@example.com", id.Email)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := New("secret-a", "", time.Hour)
	verifier := New("secret-b", "", time.Hour)

	token, err := issuer.GenerateToken("identity-1", "a@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	svc := New("secret", "", -time.Minute)

	token, err := svc.GenerateToken("identity-1", "a@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongAudience(t *testing.T) {
	issuer := New("secret", "other", time.Hour)
	verifier := New("secret", "authenticated", time.Hour)

	token, err := issuer.GenerateToken("identity-1", "a@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	svc := New("secret", "", time.Hour)
	claims := Claims{
		Email: "a@example.com",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "identity-1",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_NameFromMetadata(t *testing.T) {
	svc := New("secret", "", time.Hour)
	claims := Claims{
		Email:        "a@example.com",
		UserMetadata: map[string]any{"full_name": "Alice Doe"},
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "identity-1",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", id.Name)
}
