package service

import (
	"context"
	"errors"

	autherrors "eventbook/internal/auth/errors"
	"eventbook/internal/auth/repository"
	"eventbook/internal/auth/validator"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/middleware"
	"eventbook/pkg/model"
	"eventbook/pkg/sanitizer"
	"eventbook/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.AuthResponse, error)

	// LoadPrincipal implements middleware.PrincipalLoader.
	LoadPrincipal(ctx context.Context, userID string) (*middleware.Principal, error)
}

type authService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *token.Manager
	cfg       *config.Config
}

func NewAuthService(
	repo repository.UserRepository,
	userValidator *validator.UserValidator,
	tokens *token.Manager,
	cfg *config.Config,
) AuthService {
	return &authService{
		repo:      repo,
		validator: userValidator,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Name = sanitizer.CollapseSpaces(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	// Only an explicit admin request yields an admin account; any other
	// value falls back to a regular user.
	role := model.RoleUser
	if req.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already registered")
		}
		s.cfg.Log.Error("Failed to register user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	signed, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User registered", "user_id", user.ID, "role", user.Role)
	return &model.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   signed,
		User:    user.Public(),
	}, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			// Same response as a bad password so probes cannot enumerate accounts.
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	signed, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID)
	return &model.AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   signed,
		User:    user.Public(),
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateLookupError(err, userID)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.AuthResponse, error) {
	req.Name = sanitizer.CollapseSpaces(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateUpdate(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateLookupError(err, userID)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal("Failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, userID, user); err != nil {
		if errors.Is(err, autherrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, translateLookupError(err, userID)
	}

	signed, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("Profile updated", "user_id", userID)
	return &model.AuthResponse{
		Success: true,
		Message: "Profile updated successfully",
		Token:   signed,
		User:    user.Public(),
	}, nil
}

func (s *authService) LoadPrincipal(ctx context.Context, userID string) (*middleware.Principal, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateLookupError(err, userID)
	}
	return &middleware.Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func translateLookupError(err error, userID string) error {
	if errors.Is(err, autherrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", userID)
	}
	if errors.Is(err, autherrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal("Failed to look up user", err)
}
