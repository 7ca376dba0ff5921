package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"food-rescue-rewards/internal/usecase"
)

// ===== Bearer token primitives =====

// ScanClaims is the verified identity behind an authenticated scan.
// Tokens are issued by the account service; this API only verifies.
type ScanClaims struct {
	Wallet string `json:"wallet"`
	jwt.RegisteredClaims
}

type AuthManager struct {
	secret []byte
}

func NewAuthManager(secret string) *AuthManager {
	return &AuthManager{secret: []byte(secret)}
}

// CallerFromRequest extracts and verifies the bearer token, returning
// the caller identity (subject claim) and reward wallet.
func (a *AuthManager) CallerFromRequest(r *http.Request) (usecase.Caller, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return usecase.Caller{}, errors.New("missing bearer token")
	}
	claims := &ScanClaims{}
	tkn, err := jwt.ParseWithClaims(strings.TrimSpace(hdr[7:]), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return usecase.Caller{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return usecase.Caller{}, errors.New("token has no subject")
	}
	return usecase.Caller{UserID: claims.Subject, Wallet: claims.Wallet}, nil
}
