package auth

// Claims are the identity fields extracted from a verified access token.
type Claims struct {
	Subject  string
	Email    string
	FullName string
}

// Authenticator verifies bearer tokens issued by the identity provider.
// This service never issues tokens itself.
type Authenticator interface {
	ValidateAccessToken(token string) (*Claims, error)
}
