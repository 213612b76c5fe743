package jwt

import (
	"errors"
	"strings"
	"time"

	"equiplend/internal/domain"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Service verifies bearer tokens issued by the identity provider. The
// provider signs HS256 tokens with a shared secret; sub is the identity id.
type Service struct {
	secret   []byte
	audience string
	ttl      time.Duration
}

type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret, audience string, ttl time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		audience: audience,
		ttl:      ttl,
	}
}

// GenerateToken issues a token the way the provider does. Used by the seed
// command and tests.
func (s *Service) GenerateToken(identityID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   identityID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	if s.audience != "" {
		claims.Audience = jwtlib.ClaimStrings{s.audience}
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
	}
	if s.audience != "" {
		opts = append(opts, jwtlib.WithAudience(s.audience))
	}

	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Verify returns the identity carried by a valid token.
func (s *Service) Verify(tokenStr string) (domain.Identity, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return domain.Identity{}, err
	}
	id := domain.Identity{
		ID:    claims.Subject,
		Email: strings.ToLower(strings.TrimSpace(claims.Email)),
	}
	if name, ok := claims.UserMetadata["full_name"].(string); ok {
		id.Name = name
	} else if name, ok := claims.UserMetadata["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
