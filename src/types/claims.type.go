package types

import "github.com/golang-jwt/jwt/v4"

// Claims is the bearer token payload. Subject carries the user id.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
