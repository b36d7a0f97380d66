package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// InsecureDefaultSecret is the hinted placeholder secret. Production
// configuration refuses to start with it.
const InsecureDefaultSecret = "change-me-in-production"

// ErrInvalidToken is the only error Verify returns. Bad signature, wrong
// algorithm, malformed payload and expiry all collapse into it.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig is injected at construction; the codec never reads globals.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type tokenClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 identity tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenCodec builds a codec from cfg. A non-positive TTL selects
// domain.DefaultSessionTTL and an empty secret selects InsecureDefaultSecret.
func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	secret := cfg.Secret
	if secret == "" {
		secret = InsecureDefaultSecret
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, issuer: cfg.Issuer, now: time.Now}
}

// TTL returns the lifetime given to every signed token.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Sign issues a token for the identity fields of claims. The returned claims
// carry the generated token id and the absolute expiry embedded in the token.
func (c *TokenCodec) Sign(claims domain.Claims) (string, domain.Claims, error) {
	now := c.now().UTC().Truncate(time.Second)
	issued := domain.Claims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(c.ttl),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:   issued.UserID,
		Username: issued.Username,
		Role:     string(issued.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        issued.TokenID,
			Subject:   strconv.FormatInt(issued.UserID, 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
		},
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", domain.Claims{}, err
	}
	return signed, issued, nil
}

// Verify checks signature and expiry together and returns the embedded claims.
func (c *TokenCodec) Verify(token string) (domain.Claims, error) {
	if token == "" {
		return domain.Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return domain.Claims{}, ErrInvalidToken
	}

	role := domain.Role(tc.Role)
	if tc.UserID <= 0 || !role.Valid() || tc.ExpiresAt == nil {
		return domain.Claims{}, ErrInvalidToken
	}

	return domain.Claims{
		UserID:    tc.UserID,
		Username:  tc.Username,
		Role:      role,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time.UTC(),
	}, nil
}
