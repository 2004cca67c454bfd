package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// CapUploadFiles gates upload, replace and delete.
const CapUploadFiles = "upload_files"

// Identity is the authenticated caller as carried by the JWT.
type Identity struct {
	UserID          string
	MembershipLevel string
	// Capabilities is nil when the token carries no capabilities claim;
	// nil means the default grant (upload allowed), an explicit empty
	// list revokes it.
	Capabilities []string
}

// Can reports whether the identity holds the named capability.
func (id Identity) Can(cap string) bool {
	if id.Capabilities == nil {
		return cap == CapUploadFiles
	}
	for _, c := range id.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithIdentity attaches the verified identity to the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

type ipKey struct{}

// WithClientIP attaches the caller's remote address to the request context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// ClientIPFromContext returns the remote address stored by the middleware,
// "" when none was recorded.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}

// JWTVerifier verifies RS256 tokens. With no public key configured it parses
// claims without signature validation (dev only).
type JWTVerifier struct {
	pub *rsa.PublicKey
}

func NewJWTVerifier(pubPath string) (*JWTVerifier, error) {
	if pubPath == "" {
		return &JWTVerifier{}, nil
	}
	b, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, err
	}
	return &JWTVerifier{pub: pub}, nil
}

// VerifyToken returns the caller identity for a valid token.
func (j *JWTVerifier) VerifyToken(token string) (Identity, error) {
	var t *jwt.Token
	var err error
	if j.pub != nil {
		t, err = jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return j.pub, nil
		})
		if err == nil && !t.Valid {
			err = errors.New("invalid token")
		}
	} else {
		t, _, err = new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	}
	if err != nil {
		return Identity{}, err
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims maps a claims set to an Identity. The user id is taken
// from user_id, user_uuid or sub, in that order.
func IdentityFromClaims(claims jwt.MapClaims) (Identity, error) {
	var id Identity
	for _, key := range []string{"user_id", "user_uuid", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			id.UserID = v
			break
		}
	}
	if id.UserID == "" {
		return Identity{}, errors.New("user id not found in token")
	}
	if v, ok := claims["membership_level"].(string); ok {
		id.MembershipLevel = v
	}
	if raw, ok := claims["capabilities"]; ok {
		id.Capabilities = []string{}
		if list, ok := raw.([]interface{}); ok {
			for _, c := range list {
				if s, ok := c.(string); ok {
					id.Capabilities = append(id.Capabilities, s)
				}
			}
		}
	}
	return id, nil
}
