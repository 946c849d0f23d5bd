package session

import (
	"errors"
	"fmt"
	"time"

	"evspare/internal/models"

	"github.com/dgrijalva/jwt-go"
)

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for a well-signed token past its exp claim.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload of a session token. The standard jti claim carries the
// session id and sub carries the user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
	parser *jwt.Parser
}

// NewSigner creates a Signer for secret.
func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		// Expiry is checked by Verify against the caller's clock.
		parser: &jwt.Parser{
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
			SkipClaimsValidation: true,
		},
	}
}

// Sign returns the token for sess.
func (s *Signer) Sign(sess *models.Session) (string, error) {
	claims := Claims{
		Email: sess.Email,
		Role:  string(sess.Role),
		StandardClaims: jwt.StandardClaims{
			Id:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  sess.IssuedAt.Unix(),
			ExpiresAt: sess.ExpiresAt.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and then the expiry at now. On ErrTokenExpired the
// returned claims are still populated so the caller can purge the session.
func (s *Signer) Verify(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Id == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if now.Unix() >= claims.ExpiresAt {
		return claims, ErrTokenExpired
	}
	return claims, nil
}
