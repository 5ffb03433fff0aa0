package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type TokenService struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is what login hands back: a short-lived access token and a
// longer-lived refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (ts TokenService) IssuePair(userID string) (TokenPair, error) {
	access, err := ts.sign(userID, TokenTypeAccess, ts.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ts.sign(userID, TokenTypeRefresh, ts.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a fresh access token, used by the refresh endpoint.
func (ts TokenService) IssueAccess(userID string) (string, error) {
	return ts.sign(userID, TokenTypeAccess, ts.AccessTTL)
}

func (ts TokenService) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return s, nil
}

func (ts TokenService) ParseAccess(tokenString string) (*Claims, error) {
	return ts.parse(tokenString, TokenTypeAccess)
}

func (ts TokenService) ParseRefresh(tokenString string) (*Claims, error) {
	return ts.parse(tokenString, TokenTypeRefresh)
}

func (ts TokenService) parse(tokenString, wantType string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("wrong token type: got %q, want %q", claims.TokenType, wantType)
	}
	return claims, nil
}
