package service

import "github.com/99minutos/reporting-system/internal/core/domain"

// PasswordHasher abstracts the credential hasher (bcrypt).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer abstracts the token codec (HS256 JWT).
type TokenIssuer interface {
	Sign(claims domain.Claims) (string, domain.Claims, error)
	Verify(token string) (domain.Claims, error)
}
