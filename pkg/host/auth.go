package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marmos91/appfx/internal/logger"
)

var (
	// ErrInvalidToken is returned for bearer tokens that fail verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSecretLength is returned for signing keys shorter than
	// MinSecretLength.
	ErrInvalidSecretLength = errors.New("JWT secret must be at least 32 characters")
)

// MinSecretLength is the shortest accepted HMAC signing key.
const MinSecretLength = 32

// TokenVerifier signs and verifies the HS256 bearer tokens that name web
// request principals.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier returns a verifier for secret. A non-empty issuer is
// written into signed tokens and required when verifying.
func NewTokenVerifier(secret, issuer string) (*TokenVerifier, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrInvalidSecretLength
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// Sign returns a token for subject that expires after ttl.
func (v *TokenVerifier) Sign(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    v.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and issuer of token and returns its
// subject.
func (v *TokenVerifier) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

type subjectKey struct{}

// bearerToken extracts the token of a Bearer Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// bearerAuth verifies the bearer token of requests that carry an
// Authorization header and stores its subject in the request context.
// Requests without the header pass through; a bad token gets a 401.
func bearerAuth(v *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authorization header must use the Bearer scheme")
				return
			}
			subject, err := v.Verify(token)
			if err != nil {
				logger.DebugCtx(r.Context(), "Rejected bearer token", logger.Err(err))
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestPrincipal names the principal of r: the verified token subject
// when there is one, otherwise the PrincipalHeader set by a proxy.
func requestPrincipal(r *http.Request) string {
	if subject, ok := r.Context().Value(subjectKey{}).(string); ok {
		return subject
	}
	return r.Header.Get(PrincipalHeader)
}
