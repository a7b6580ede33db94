package mockapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "admin-console-mock"

// adminUserID identifies the single admin account of the fake.
const adminUserID = "admin-1"

// issueAccessLocked signs a JWT and records its expiry. s.mu must be held.
func (s *Server) issueAccessLocked() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  adminUserID,
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	expiry := time.Time{}
	if ttl := s.opts.AccessTokenTTL; ttl > 0 {
		expiry = now.Add(ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiry)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if expiry.IsZero() {
		expiry = farFuture
	}
	s.accessTokens[signed] = expiry
	return signed, nil
}

func (s *Server) issueRefreshLocked() string {
	tok := uuid.NewString()
	s.refreshTokens[tok] = true
	return tok
}

var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// validAccessToken accepts tokens this server issued, signed with its key,
// and not yet expired or revoked.
func (s *Server) validAccessToken(token string) bool {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.accessTokens[token]
	return ok && s.now().Before(expiry)
}

func (s *Server) revokeLocked(accessToken string) {
	delete(s.accessTokens, accessToken)
}
