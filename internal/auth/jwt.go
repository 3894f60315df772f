package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingKey   = errors.New("jwt secret is not configured")
)

// Claims are the registered claims of an admin token plus its roles
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 admin tokens
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service; issuer is checked only when set
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for subject with the given roles
func (s *TokenService) Issue(subject, name string, roles ...Role) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingKey
	}

	now := s.now()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	claims := Claims{
		Name:  name,
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken verifies signature, expiry and issuer and returns the caller.
// Unknown roles are dropped.
func (s *TokenService) ValidateToken(tokenString string) (*UserContext, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user := &UserContext{
		Subject:  claims.Subject,
		Name:     claims.Name,
		AuthType: AuthTypeJWT,
	}
	for _, r := range claims.Roles {
		if role := Role(r); role.IsValid() {
			user.Roles = append(user.Roles, role)
		}
	}
	return user, nil
}
