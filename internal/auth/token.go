package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "mdd-api"
	usernameClaim = "username"
)

// TokenService issues and validates HS256 bearer tokens whose subject is the user ID.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret; tokens live for ttl.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service using now as its time source.
func (t *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *t
	cp.now = now
	return &cp
}

// Issue signs a token for the given user.
func (t *TokenService) Issue(userID uint, username string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	issuedAt := t.now()
	claims := jwt.MapClaims{
		"sub":         strconv.FormatUint(uint64(userID), 10),
		usernameClaim: username,
		"iss":         tokenIssuer,
		"iat":         issuedAt.Unix(),
		"exp":         issuedAt.Add(t.ttl).Unix(),
		"jti":         uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate reports whether token is well formed, correctly signed and unexpired.
func (t *TokenService) Validate(token string) bool {
	return t.Check(token) == nil
}

// Check is Validate with the failure reason, for diagnostic logging.
func (t *TokenService) Check(token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return err
	}
	if _, err := subjectOf(claims); err != nil {
		return err
	}
	return nil
}

// SubjectUserID returns the user ID a valid token was issued for.
func (t *TokenService) SubjectUserID(token string) (uint, error) {
	claims, err := t.parse(token)
	if err != nil {
		return 0, err
	}
	return subjectOf(claims)
}

// Claim returns a string claim from a valid token.
func (t *TokenService) Claim(token, name string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}
	value, ok := claims[name].(string)
	if !ok {
		return "", fmt.Errorf("claim %q missing or not a string", name)
	}
	return value, nil
}

// Username returns the username claim from a valid token.
func (t *TokenService) Username(token string) (string, error) {
	return t.Claim(token, usernameClaim)
}

func (t *TokenService) parse(token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

func subjectOf(claims jwt.MapClaims) (uint, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errors.New("missing subject claim")
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return uint(id), nil
}
