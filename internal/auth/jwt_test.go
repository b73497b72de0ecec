package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	tokens := NewDeviceTokens("test-secret", time.Hour)

	token, err := tokens.Issue("dev_123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if userID != "dev_123" {
		t.Errorf("userID = %q, want dev_123", userID)
	}
}

func TestValidateGarbage(t *testing.T) {
	tokens := NewDeviceTokens("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "not-a-token"},
		{name: "truncated", token: "eyJhbGciOiJIUzI1NiJ9.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tokens.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewDeviceTokens("secret-a", time.Hour).Issue("dev_123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewDeviceTokens("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpired(t *testing.T) {
	tokens := NewDeviceTokens("test-secret", -time.Minute)

	token, err := tokens.Issue("dev_123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := tokens.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}
