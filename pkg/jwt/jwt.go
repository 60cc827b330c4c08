package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Audiencia que Supabase Auth pone en los access tokens de usuarios logueados.
const AudienceAuthenticated = "authenticated"

// Claims subconjunto de los claims de un access token de Supabase Auth.
// Subject es el id del usuario (auth.users.id), que es el user_id de empresas y notifications.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"` // "authenticated" | "service_role" | "anon"
}

// Generate firma un token con la forma de los de Supabase. Lo usan tests y scripts locales;
// en producción los tokens los emite Supabase Auth con el mismo secreto.
func Generate(secret, userID, email string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{AudienceAuthenticated},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		Email: email,
		Role:  AudienceAuthenticated,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma HS256, expiración y audiencia, y devuelve los claims.
// Retorna error si el token es inválido, expirado, de otra audiencia o sin sub.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithAudience(AudienceAuthenticated), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("jwt: token sin sub")
	}
	return claims, nil
}
