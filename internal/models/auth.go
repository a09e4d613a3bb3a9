package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims identifies the operator behind a bearer token.
type JWTClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// TokenResponse is returned when a token is issued.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
