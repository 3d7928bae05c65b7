package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// RoleAdmin is the only role that may call admin endpoints.
const RoleAdmin = "admin"

// AdminClaims are the JWT claims of an admin token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies admin tokens.
type AuthService struct {
	secret       []byte
	ttl          time.Duration
	username     string
	passwordHash []byte
	now          func() time.Time
}

// NewAuthService creates a new AuthService. passwordHash is a bcrypt hash;
// an empty hash disables login.
func NewAuthService(secret string, ttl time.Duration, username, passwordHash string) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		secret:       []byte(secret),
		ttl:          ttl,
		username:     username,
		passwordHash: []byte(passwordHash),
		now:          time.Now,
	}
}

// Login checks admin credentials and returns a signed token.
// Returns ErrInvalidCredentials on any mismatch.
func (s *AuthService) Login(username, password string) (*model.Token, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// bcrypt runs for unknown usernames too.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return s.Issue(username)
}

// Issue signs an admin token for subject.
func (s *AuthService) Issue(subject string) (*model.Token, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.Token{Token: signed, ExpiresAt: expires}, nil
}

// ParseToken verifies a token and returns its claims.
// Returns ErrInvalidToken for bad signatures, expired tokens or non-admin roles.
func (s *AuthService) ParseToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
