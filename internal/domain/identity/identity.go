// Package identity implements C3: decoding a bearer JWT into an Identity
// and answering authorization questions against its claims. Grounded on
// the JWT-auth and OAuth bearer-extraction components of the system this
// runtime reimplements: a JWT is decoded once into a flat claim map, and
// every later authorization check (scope gating, filter rules) reads from
// that map rather than re-parsing the token.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// Well-known claim names, mirroring RFC 7519 §4.1's registered claims plus
// the OAuth2 "scope" claim.
const (
	ClaimSubject   = "sub"
	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"
	ClaimExpiry    = "exp"
	ClaimIssuedAt  = "iat"
	ClaimNotBefore = "nbf"
	ClaimJWTID     = "jti"
	ClaimScope     = "scope"
	claimScopeAlt  = "scp"
)

// Identity is an authenticated caller: the raw JWT bytes it presented, and
// its claims flattened to strings (matching the wire shape used when claims
// are bound into a session's keyspace, see session.Session.BindIdentity).
type Identity struct {
	JWT    []byte
	Claims map[string]string
}

// Subject returns the "sub" claim, or "" if absent.
func (id Identity) Subject() string { return id.Claims[ClaimSubject] }

// Issuer returns the "iss" claim, or "" if absent.
func (id Identity) Issuer() string { return id.Claims[ClaimIssuer] }

// Scopes returns the space-separated "scope" claim split into individual
// scope strings, falling back to the Microsoft-style "scp" claim (itself
// either a JSON array or space-separated) when "scope" is absent.
func (id Identity) Scopes() []string {
	if raw, ok := id.Claims[ClaimScope]; ok {
		return strings.Fields(raw)
	}
	if raw, ok := id.Claims[claimScopeAlt]; ok {
		return parseScpClaim(raw)
	}
	return nil
}

func parseScpClaim(raw string) []string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return arr
		}
	}
	return strings.Fields(raw)
}

// HasScope reports whether id's scopes include scope.
func (id Identity) HasScope(scope string) bool {
	for _, s := range id.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAllScopes reports whether id's scopes include every scope in required.
func (id Identity) HasAllScopes(required []string) bool {
	for _, r := range required {
		if !id.HasScope(r) {
			return false
		}
	}
	return true
}

// Decoder validates and decodes bearer JWTs into Identity values.
// Verification key material comes from one of two sources, matching the
// runtime's JWT_PUBLIC_KEY / JWT_JWKS_URI configuration: a static public
// key, or a remote JWKS endpoint resolved per-token by key ID.
type Decoder struct {
	keyFunc  jwt.Keyfunc
	parser   *jwt.Parser
	issuer   string
	audience string
}

// NewDecoderWithPublicKey builds a Decoder that verifies every token
// against a single static public key, matching the runtime's
// JWT_PUBLIC_KEY configuration mode.
func NewDecoderWithPublicKey(key interface{}, issuer, audience string) *Decoder {
	return NewDecoderWithKeyFunc(func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, issuer, audience)
}

// NewDecoderWithKeyFunc builds a Decoder from a caller-supplied key
// resolution function, e.g. one backed by a JWKS cache keyed by "kid" —
// matching the runtime's JWT_JWKS_URI configuration mode.
func NewDecoderWithKeyFunc(keyFunc jwt.Keyfunc, issuer, audience string) *Decoder {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256", "ES256", "PS256", "HS256"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Decoder{
		keyFunc:  keyFunc,
		parser:   jwt.NewParser(opts...),
		issuer:   issuer,
		audience: audience,
	}
}

// Decode validates tokenBytes as a bearer JWT and flattens its claims.
// Claim values are stringified: strings pass through, numbers/bools render
// via fmt.Sprint, a multi-valued "aud" renders as a comma-joined string, and
// any other claim that cannot be stringified is dropped rather than failing
// the whole decode.
func (d *Decoder) Decode(tokenBytes []byte) (Identity, error) {
	token, err := d.parser.Parse(string(tokenBytes), d.keyFunc)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: decode jwt: %w", err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("identity: jwt failed validation")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("identity: unexpected claims type %T", token.Claims)
	}

	flat := make(map[string]string, len(claims))
	for k, v := range claims {
		switch val := v.(type) {
		case string:
			flat[k] = val
		case float64, bool:
			flat[k] = fmt.Sprint(val)
		case []interface{}:
			if k == "aud" {
				flat[k] = joinAudience(val)
				continue
			}
			if b, err := json.Marshal(val); err == nil {
				flat[k] = string(b)
			}
		default:
			if b, err := json.Marshal(val); err == nil {
				flat[k] = string(b)
			}
		}
	}

	return Identity{JWT: append([]byte(nil), tokenBytes...), Claims: flat}, nil
}

// joinAudience renders a multi-valued "aud" claim as a comma-joined string
// rather than a JSON array, matching the single-valued case's plain-string
// form. Non-string entries are stringified with fmt.Sprint rather than
// dropped.
func joinAudience(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = s
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

// ExtractBearerToken extracts a bearer token from an Authorization header
// value of the form "Bearer <token>" (RFC 6750 §2.1). Extraction from the
// request body or query string (RFC 6750 §2.2/§2.3) is intentionally not
// supported: the runtime's transport never exposes query/body token
// placement, only the Authorization header.
func ExtractBearerToken(authorizationHeader string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorizationHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, prefix))
	if !isValidBearerTokenFormat(token) {
		return "", false
	}
	return token, true
}

// isValidBearerTokenFormat validates the b64token grammar of RFC 6750 §2.1:
// 1*( ALPHA / DIGIT / "-" / "." / "_" / "~" / "+" / "/" ) *"="
func isValidBearerTokenFormat(token string) bool {
	if token == "" {
		return false
	}
	i := len(token)
	for i > 0 && token[i-1] == '=' {
		i--
	}
	if i == 0 {
		return false
	}
	for _, c := range token[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '.' || c == '_' || c == '~' || c == '+' || c == '/':
		default:
			return false
		}
	}
	return true
}

// Authorizer answers the pre-handler authorization question the auth
// gate calls on every oauth-mode request: given the inbound request,
// the caller's flattened claims, and its session, may this request
// proceed. The runtime carries no role-based policy engine (see
// DESIGN.md's dropped-modules list), so Authorizer is a single predicate
// hook rather than a rule-evaluation component; AllowAll is the default.
type Authorizer func(req mcp.ClientRequest, claims map[string]string, sess SessionClaims) bool

// SessionClaims is the narrow view of a session an Authorizer needs:
// its bound claims, independent of the concrete session.Session type
// (which satisfies it through its Claim method).
type SessionClaims interface {
	Claim(ctx context.Context, name string) (string, bool, error)
}

// AllowAll is the default Authorizer: every authenticated request is
// authorized. Deployments needing finer-grained gating supply their own
// Authorizer to the transport.
func AllowAll(req mcp.ClientRequest, claims map[string]string, sess SessionClaims) bool { return true }

// contextKey is an unexported type for identity.Context values, avoiding
// collisions with keys defined in other packages.
type contextKey struct{}

// WithIdentity returns a context carrying id, retrievable with FromContext.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the Identity attached by WithIdentity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
