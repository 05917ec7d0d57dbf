package security

import (
	"testing"
	"time"
)

const testSecret = "unit-test-secret-key-of-at-least-32-bytes"

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(testSecret)

	token, err := svc.GenerateToken("customer-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	customerID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if customerID != "customer-42" {
		t.Errorf("customer id = %q, want customer-42", customerID)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(testSecret)

	token, err := svc.GenerateToken("customer-42", -time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewAuthService(testSecret).GenerateToken("customer-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewAuthService("another-secret-also-32-bytes-long!!").ValidateToken(token); err == nil {
		t.Fatal("expected a token signed with a different secret to be rejected")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := NewAuthService(testSecret).ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("expected a malformed token to be rejected")
	}
}
