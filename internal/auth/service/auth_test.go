package service

import (
	"context"
	"io"
	"testing"
	"time"

	autherrors "eventbook/internal/auth/errors"
	"eventbook/internal/auth/validator"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/logger"
	"eventbook/pkg/model"
	"eventbook/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

// ────────────────────────────────────────────────
// Mock repository
// ────────────────────────────────────────────────

type mockUserRepository struct {
	insertFunc      func(ctx context.Context, user *model.User) error
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	updateFunc      func(ctx context.Context, id string, user *model.User) error
}

func (m *mockUserRepository) Insert(ctx context.Context, user *model.User) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, user)
	}
	user.ID = "user-1"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, autherrors.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, autherrors.ErrNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, id string, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, user)
	}
	return nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

func newTestAuthService(repo *mockUserRepository) AuthService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Output: io.Discard}),
	}
	tokens := token.NewManager("test-secret", time.Hour, "eventbook-test")
	return NewAuthService(repo, validator.NewUserValidator(cfg.Log), tokens, cfg)
}

func storedUser(password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.User{
		ID:           "user-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
}

// ────────────────────────────────────────────────
// Register
// ────────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	var captured *model.User
	repo := &mockUserRepository{
		insertFunc: func(ctx context.Context, user *model.User) error {
			captured = user
			user.ID = "user-1"
			return nil
		},
	}
	svc := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "  Alice   Smith ",
		Email:    " Alice@Example.COM ",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Name != "Alice Smith" {
		t.Errorf("expected collapsed name, got %q", captured.Name)
	}
	if captured.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", captured.Email)
	}
	if captured.Role != model.RoleUser {
		t.Errorf("expected role user, got %s", captured.Role)
	}
	if captured.PasswordHash == "secret123" || captured.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if resp.Token == "" {
		t.Error("expected a signed token")
	}
	if resp.User.ID != "user-1" {
		t.Errorf("expected user-1, got %s", resp.User.ID)
	}
}

func TestRegister_AdminRoleHonored(t *testing.T) {
	var captured *model.User
	repo := &mockUserRepository{
		insertFunc: func(ctx context.Context, user *model.User) error {
			captured = user
			user.ID = "user-1"
			return nil
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Role != model.RoleAdmin {
		t.Errorf("expected role admin, got %s", captured.Role)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{Email: "a@b.com"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		insertFunc: func(ctx context.Context, user *model.User) error {
			return autherrors.ErrDuplicateEmail
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, code)
	}
}

// ────────────────────────────────────────────────
// Login
// ────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	user := storedUser("secret123")
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email != "alice@example.com" {
				return nil, autherrors.ErrNotFound
			}
			return user, nil
		},
	}
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    " ALICE@example.com ",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a signed token")
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("unexpected user email: %s", resp.User.Email)
	}
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	user := storedUser("secret123")
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == "alice@example.com" {
				return user, nil
			}
			return nil, autherrors.ErrNotFound
		},
	}
	svc := newTestAuthService(repo)

	_, badPassword := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	_, unknownEmail := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})

	for name, err := range map[string]error{"bad password": badPassword, "unknown email": unknownEmail} {
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeUnauthorized {
			t.Errorf("%s: expected code %s, got %s", name, apperrors.CodeUnauthorized, appErr.Code)
		}
		if appErr.Message != "Invalid email or password" {
			t.Errorf("%s: expected indistinguishable message, got %q", name, appErr.Message)
		}
	}
}

// ────────────────────────────────────────────────
// Profile
// ────────────────────────────────────────────────

func TestProfile_NotFound(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{})

	_, err := svc.Profile(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestUpdateProfile_RehashesPassword(t *testing.T) {
	user := storedUser("old-password")
	oldHash := user.PasswordHash
	var saved *model.User
	repo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return user, nil
		},
		updateFunc: func(ctx context.Context, id string, u *model.User) error {
			saved = u
			return nil
		},
	}
	svc := newTestAuthService(repo)

	resp, err := svc.UpdateProfile(context.Background(), "user-1", &model.UpdateProfileRequest{
		Password: "new-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.PasswordHash == oldHash {
		t.Error("expected password hash to change")
	}
	if bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("new-password")) != nil {
		t.Error("new hash must verify against the new password")
	}
	if resp.Token == "" {
		t.Error("expected a fresh token")
	}
}
