package jwt

import (
	"testing"
	"time"

	"clinic-finder/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute})
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "admin@clinic.test", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != userID || claims.RoleID != 1 || claims.TokenID != tokenID || claims.TokenType != AccessToken {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute})
	other := NewJWTService(config.JWTConfig{Secret: "other-secret", AccessExpiry: time.Minute})
	expired := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: -time.Minute})

	foreign, _, _ := other.GenerateAccessToken(uuid.New(), "x@clinic.test", 1)
	stale, _, _ := expired.GenerateAccessToken(uuid.New(), "x@clinic.test", 1)
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New()}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"none algorithm", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateToken(tt.token); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
