package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseAuthenticator verifies HS256 access tokens signed with the
// project's JWT secret. Supabase issues tokens with aud "authenticated"
// and the project URL as issuer.
type SupabaseAuthenticator struct {
	secret string
	aud    string
	iss    string
}

func NewSupabaseAuthenticator(secret, aud, iss string) *SupabaseAuthenticator {
	return &SupabaseAuthenticator{secret: secret, aud: aud, iss: iss}
}

func (a *SupabaseAuthenticator) ValidateAccessToken(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithAudience(a.aud),
		jwt.WithIssuer(a.iss),
	)
	if err != nil {
		return nil, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token missing subject")
	}

	c := &Claims{Subject: sub}
	if email, ok := mapClaims["email"].(string); ok {
		c.Email = email
	}
	// Supabase puts profile fields under user_metadata.
	if meta, ok := mapClaims["user_metadata"].(map[string]any); ok {
		if name, ok := meta["full_name"].(string); ok {
			c.FullName = name
		}
	}
	return c, nil
}
