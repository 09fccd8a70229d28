package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

const (
	testSecret = "test-secret-at-least-32-chars-long-for-security"
	testIssuer = "ingrid-test"
)

func TestJWTManager_GenerateAndValidate_Success(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	token, err := manager.GenerateToken("discord-bot", ctxutil.RoleService)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	subject, role, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if subject != "discord-bot" {
		t.Errorf("expected subject discord-bot, got %s", subject)
	}
	if role != ctxutil.RoleService {
		t.Errorf("expected role 'service', got %q", role)
	}
}

func TestJWTManager_GenerateAndValidate_AdminRole(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	token, err := manager.GenerateToken("ops", ctxutil.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, role, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if role != ctxutil.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", role)
	}
}

func TestJWTManager_GenerateToken_Rejects(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	if _, err := manager.GenerateToken("  ", ctxutil.RoleService); err == nil {
		t.Error("expected error for empty subject")
	}
	if _, err := manager.GenerateToken("bot", "user"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestJWTManager_ValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, -1*time.Hour) // Already expired

	token, err := manager.GenerateToken("bot", ctxutil.RoleService)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, _, err = manager.ValidateToken(token)
	if err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
	if !strings.Contains(err.Error(), "expired") && !strings.Contains(err.Error(), "parse token") {
		t.Errorf("expected expiry-related error, got: %v", err)
	}
}

func TestJWTManager_ValidateToken_InvalidSignature(t *testing.T) {
	manager1 := NewJWTManager(testSecret, testIssuer, 15*time.Minute)
	manager2 := NewJWTManager("different-secret-32-chars-long-for-security!!", testIssuer, 15*time.Minute)

	token, err := manager1.GenerateToken("bot", ctxutil.RoleService)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, _, err := manager2.ValidateToken(token); err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestJWTManager_ValidateToken_Malformed(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	malformedTokens := []string{
		"not.a.jwt",
		"invalid-token",
		"header.payload", // Missing signature
	}

	for _, token := range malformedTokens {
		if _, _, err := manager.ValidateToken(token); err == nil {
			t.Errorf("expected error for malformed token %q, got nil", token)
		}
	}
}

func TestJWTManager_ValidateToken_WrongIssuer(t *testing.T) {
	manager1 := NewJWTManager(testSecret, testIssuer, 15*time.Minute)
	manager2 := NewJWTManager(testSecret, "wrong-issuer", 15*time.Minute)

	token, err := manager1.GenerateToken("bot", ctxutil.RoleService)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, _, err = manager2.ValidateToken(token)
	if err == nil {
		t.Fatal("expected error for wrong issuer, got nil")
	}
	if !strings.Contains(err.Error(), "invalid issuer") {
		t.Errorf("expected 'invalid issuer' error, got: %v", err)
	}
}

func TestJWTManager_ValidateToken_UnknownRole(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	now := time.Now()
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, clientClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bot",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: "superuser",
	})
	signed, err := forged.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := manager.ValidateToken(signed); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestJWTManager_ValidateToken_EmptyString(t *testing.T) {
	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	_, _, err := manager.ValidateToken("")
	if err == nil {
		t.Fatal("expected error for empty token, got nil")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected 'empty' error, got: %v", err)
	}
}
