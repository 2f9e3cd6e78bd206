package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedHS256(t *testing.T, secret []byte, claims jwt.MapClaims) []byte {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return []byte(signed)
}

func TestDecoderDecodesClaims(t *testing.T) {
	secret := []byte("test-secret")
	decoder := NewDecoderWithPublicKey(secret, "", "")

	raw := signedHS256(t, secret, jwt.MapClaims{
		"sub":   "user-123",
		"iss":   "https://issuer.example",
		"scope": "tools:read tools:call",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, err := decoder.Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if id.Subject() != "user-123" {
		t.Errorf("Subject() = %q, want %q", id.Subject(), "user-123")
	}
	if id.Issuer() != "https://issuer.example" {
		t.Errorf("Issuer() = %q, want %q", id.Issuer(), "https://issuer.example")
	}
	if !id.HasScope("tools:call") {
		t.Error("HasScope(\"tools:call\") = false, want true")
	}
	if id.HasScope("admin:write") {
		t.Error("HasScope(\"admin:write\") = true, want false")
	}
}

func TestDecoderJoinsMultiValuedAudience(t *testing.T) {
	secret := []byte("test-secret")
	decoder := NewDecoderWithPublicKey(secret, "", "")

	raw := signedHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"aud": []string{"api://gateway", "api://tools"},
	})

	id, err := decoder.Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got, want := id.Claims["aud"], "api://gateway,api://tools"; got != want {
		t.Errorf("Claims[\"aud\"] = %q, want %q", got, want)
	}
}

func TestDecoderRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	decoder := NewDecoderWithPublicKey(secret, "", "")

	raw := signedHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := decoder.Decode(raw); err == nil {
		t.Error("Decode() of expired token succeeded, want error")
	}
}

func TestDecoderRejectsWrongSecret(t *testing.T) {
	decoder := NewDecoderWithPublicKey([]byte("correct-secret"), "", "")
	raw := signedHS256(t, []byte("wrong-secret"), jwt.MapClaims{"sub": "user-123"})

	if _, err := decoder.Decode(raw); err == nil {
		t.Error("Decode() with mismatched secret succeeded, want error")
	}
}

func TestDecoderEnforcesIssuer(t *testing.T) {
	secret := []byte("test-secret")
	decoder := NewDecoderWithPublicKey(secret, "https://expected.example", "")

	raw := signedHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"iss": "https://other.example",
	})

	if _, err := decoder.Decode(raw); err == nil {
		t.Error("Decode() with mismatched issuer succeeded, want error")
	}
}

func TestHasAllScopes(t *testing.T) {
	id := Identity{Claims: map[string]string{"scope": "tools:read tools:call"}}
	if !id.HasAllScopes([]string{"tools:read", "tools:call"}) {
		t.Error("HasAllScopes() = false, want true")
	}
	if id.HasAllScopes([]string{"tools:read", "admin:write"}) {
		t.Error("HasAllScopes() = true, want false")
	}
}

func TestScopesFallsBackToScpClaim(t *testing.T) {
	id := Identity{Claims: map[string]string{"scp": `["a","b"]`}}
	scopes := id.Scopes()
	if len(scopes) != 2 || scopes[0] != "a" || scopes[1] != "b" {
		t.Errorf("Scopes() = %v, want [a b]", scopes)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"well formed", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing prefix", "abc.def.ghi", "", false},
		{"empty token", "Bearer ", "", false},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", false},
		{"invalid characters", "Bearer abc def", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBearerToken(tt.header)
			if ok != tt.wantOK {
				t.Fatalf("ExtractBearerToken() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithIdentityFromContext(t *testing.T) {
	id := Identity{Claims: map[string]string{"sub": "user-1"}}
	ctx := WithIdentity(t.Context(), id)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext() ok = false, want true")
	}
	if got.Subject() != "user-1" {
		t.Errorf("Subject() = %q, want %q", got.Subject(), "user-1")
	}
}
