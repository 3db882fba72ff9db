// Package auth verifies bearer JWTs from either a shared HMAC secret or a
// JWKS endpoint and extracts the caller identity.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kingkey0101/mealmuse-api/app/config"
)

const defaultLeeway = 30 * time.Second

// Verifier validates JWT access tokens. Two modes are supported: a shared
// HMAC secret (the NextAuth flow) or an RS256 JWKS endpoint.
type Verifier struct {
	secret  []byte
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifierFromConfig builds a verifier from the JWT section of the app
// config. A JWKS URL or issuer selects JWKS mode; otherwise the shared
// secret is required.
func NewVerifierFromConfig(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.JWKSURL != "" || cfg.Issuer != "" {
		return NewJWKSVerifier(cfg.Issuer, cfg.Audience, cfg.JWKSURL)
	}
	return NewSecretVerifier(cfg.Secret)
}

// NewSecretVerifier builds an HS256 verifier around a shared signing secret.
func NewSecretVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt secret must be set")
	}

	parser := jwt.NewParser(
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name, jwt.SigningMethodHS384.Name, jwt.SigningMethodHS512.Name}),
	)

	key := []byte(secret)
	return &Verifier{
		secret:  key,
		keyfunc: func(*jwt.Token) (any, error) { return key, nil },
		parser:  parser,
	}, nil
}

// NewJWKSVerifier builds an RS256 verifier with an optional JWKS URL override.
func NewJWKSVerifier(issuer, audience, jwksURL string) (*Verifier, error) {
	normalizedIssuer := normalizeIssuer(issuer)
	if normalizedIssuer == "" {
		return nil, errors.New("issuer must be set")
	}
	if jwksURL == "" {
		jwksURL = normalizedIssuer + ".well-known/jwks.json"
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	opts := []jwt.ParserOption{
		jwt.WithIssuer(normalizedIssuer),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Verifier{
		keyfunc: keyProvider.Keyfunc,
		parser:  jwt.NewParser(opts...),
	}, nil
}

// Verify parses and validates a JWT, returning extracted claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{
		UserID:    readString(mapClaims, "userId"),
		Email:     readString(mapClaims, "email"),
		Issuer:    readString(mapClaims, "iss"),
		ExpiresAt: readExpiry(mapClaims["exp"]),
		Raw:       mapClaims,
	}
	// Tokens minted outside the frontend carry the caller id in sub.
	if claims.UserID == "" {
		claims.UserID = readString(mapClaims, "sub")
	}
	if claims.UserID == "" {
		return nil, errors.New("token missing user id")
	}
	return claims, nil
}

// VerifyFromHeader accepts either "Bearer <token>" or a raw token value and
// never panics; every failure is reported as an error.
func (v *Verifier) VerifyFromHeader(authHeader string) (*Claims, error) {
	token, ok := ExtractToken(authHeader)
	if !ok {
		return nil, errors.New("missing or malformed authorization header")
	}
	return v.Verify(token)
}

// ExtractToken pulls the token from an Authorization header value. Both the
// "Bearer <token>" form and a bare token are accepted.
func ExtractToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	switch len(parts) {
	case 1:
		return parts[0], true
	case 2:
		if !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], true
	default:
		return "", false
	}
}

func normalizeIssuer(issuer string) string {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return ""
	}
	if !strings.HasSuffix(issuer, "/") {
		issuer += "/"
	}
	return issuer
}

func readString(claims jwt.MapClaims, key string) string {
	val := claims[key]
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

func readExpiry(raw any) time.Time {
	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return time.Unix(i, 0)
		}
	case int64:
		return time.Unix(v, 0)
	}
	return time.Time{}
}

// AuthDisabled reports whether auth should be skipped for local development.
func AuthDisabled() bool {
	if strings.EqualFold(os.Getenv("AUTH_DISABLED"), "true") {
		if strings.EqualFold(os.Getenv("ENV"), "local") || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
			log.Print("auth disabled via AUTH_DISABLED for local development")
			return true
		}
	}
	return false
}
