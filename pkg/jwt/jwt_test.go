package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/nfse-api/pkg/jwt"
)

const secret = "super-secret-jwt-token-with-at-least-32-characters"

func TestGenerateYParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "ana@example.com", 5)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, pkgjwt.AudienceAuthenticated, claims.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto", "user-1", "", 5)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "", -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

// Un token anon de Supabase no tiene audiencia "authenticated".
func TestParse_AudienciaAnonRechazada(t *testing.T) {
	claims := gojwt.MapClaims{
		"role": "anon",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Parse("", "x")
	assert.Error(t, err)
	_, err = pkgjwt.Generate("", "u", "", 1)
	assert.Error(t, err)
}
