package service

import (
	"context"
	"fmt"
	"strings"
	"tutorhub/config"
	"tutorhub/infras/jwt"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/auth/model/dto"
	userModel "tutorhub/internal/domains/user/model"
	userRepo "tutorhub/internal/domains/user/repository"
	"tutorhub/shared"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	"tutorhub/shared/password"
	gRepo "tutorhub/shared/repository"
	"tutorhub/shared/timezone"

	"github.com/rs/zerolog/log"
)

var (
	errEmailTaken         = failure.Conflict("email already registered")
	errInvalidCredentials = failure.Unauthorized("invalid email or password")
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func byEmail(email string) gDto.FilterGroup {
	return shared.FilterByID(normalizeEmail(email), userModel.FieldEmail, userModel.TableName)
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, userModel.FieldID, userModel.TableName)
}

// Register creates an active account. Emails are unique case-insensitively.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	taken, err := s.userRepo.Exist(ctx, byEmail(req.Email))
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if taken {
		return errEmailTaken
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToUserModel(constant.ContextGuest, hashed)

	err = s.userRepo.Insert(ctx, user)
	if gRepo.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
		return errEmailTaken
	}

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User registered")

	return nil
}

// Login answers the same 401 for an unknown email and a wrong password.
func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.Get(ctx, byEmail(req.Email))
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" || password.Verify(req.Password, user.Password) != nil {
		log.Warn().Str("email", normalizeEmail(req.Email)).Msg("Rejected login attempt")

		return res, errInvalidCredentials
	}

	if !user.Active {
		return res, failure.Forbidden("user account is deactivated")
	}

	tokens, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	seen := shared.TransformFields(dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}, user.ID)
	if updateErr := s.userRepo.Update(ctx, seen, byID(user.ID)); updateErr != nil {
		log.Warn().Err(updateErr).Str("user_id", user.ID).Msg("Failed to record last login")
	}

	res.FromTokenPair(tokens)
	res.UserID = user.ID
	res.Role = user.Role

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tokens, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected refresh token")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(tokens)

	return res, nil
}

// ChangePassword requires the current password and a different new one.
func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == "" {
		return failure.Unauthorized("missing user")
	}

	user, err := s.userRepo.Get(ctx, byID(userID))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return failure.NotFound("user not found")
	}

	if password.Verify(req.CurrentPassword, user.Password) != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	if req.NewPassword == req.CurrentPassword {
		return failure.BadRequestFromString("new password must differ from the current one")
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = s.userRepo.Update(ctx, shared.TransformFields(dto.UpdatePasswordRequest{Password: hashed}, userID), byID(userID)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info().Str("user_id", userID).Msg("Password changed")

	return nil
}
