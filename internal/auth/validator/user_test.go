package validator

import (
	"strings"
	"testing"

	"eventbook/pkg/logger"
	"eventbook/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	})
}

func TestValidateRegister(t *testing.T) {
	v := NewUserValidator(testLogger())

	tests := []struct {
		name      string
		req       *model.RegisterRequest
		wantError string
	}{
		{
			name: "valid request",
			req:  &model.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123"},
		},
		{
			name: "valid admin request",
			req:  &model.RegisterRequest{Name: "Root", Email: "root@example.com", Password: "secret123", Role: "admin"},
		},
		{
			name:      "missing name",
			req:       &model.RegisterRequest{Email: "alice@example.com", Password: "secret123"},
			wantError: "Name is required",
		},
		{
			name:      "bad email",
			req:       &model.RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "secret123"},
			wantError: "Email must be a valid email address",
		},
		{
			name:      "short password",
			req:       &model.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "abc"},
			wantError: "Password must be at least 6 characters",
		},
		{
			name:      "unknown role",
			req:       &model.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123", Role: "root"},
			wantError: "Role must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRegister(tt.req)
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected error containing %q, got %q", tt.wantError, err.Error())
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	v := NewUserValidator(testLogger())

	if err := v.ValidateLogin(&model.LoginRequest{Email: "alice@example.com", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ValidateLogin(&model.LoginRequest{Email: "alice@example.com"}); err == nil {
		t.Fatal("expected error for missing password")
	}
	if err := v.ValidateLogin(&model.LoginRequest{Password: "secret123"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestValidateUpdate_AllFieldsOptional(t *testing.T) {
	v := NewUserValidator(testLogger())

	if err := v.ValidateUpdate(&model.UpdateProfileRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ValidateUpdate(&model.UpdateProfileRequest{Email: "broken"}); err == nil {
		t.Fatal("expected error for malformed email")
	}
	if err := v.ValidateUpdate(&model.UpdateProfileRequest{Password: "abc"}); err == nil {
		t.Fatal("expected error for short password")
	}
}
