package dto

import (
	"strings"
	"time"
	"tutorhub/infras/jwt"
	userModel "tutorhub/internal/domains/user/model"
	"tutorhub/shared/constant"
	gModel "tutorhub/shared/model"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name       string   `json:"name"       validate:"required,min=2,max=100"`
	Email      string   `json:"email"      validate:"required,email"`
	Password   string   `json:"password"   validate:"required,min=8,max=72"`
	Role       string   `json:"role"       validate:"required,oneof=student tutor"`
	Subjects   []string `json:"subjects"   validate:"omitempty,dive,min=1,max=100"`
	HourlyRate float64  `json:"hourlyRate" validate:"omitempty,gte=0"`
	Bio        string   `json:"bio"        validate:"omitempty,max=2000"`
}

func (r *RegisterRequest) ToUserModel(username string, hashedPassword string) userModel.User {
	now := timezone.Now()

	user := userModel.User{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		Password: hashedPassword,
		Name:     strings.TrimSpace(r.Name),
		Role:     r.Role,
		Bio:      r.Bio,
		Active:   true,
		Metadata: gModel.NewMetadata(now, username),
	}

	if r.Role == constant.RoleTutor {
		user.Subjects = r.Subjects
		user.HourlyRate = r.HourlyRate
	}

	return user
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"lastLogin" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	UserID       string `json:"userId"`
	Role         string `json:"role"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.AccessToken = tokenPair.AccessToken
	r.RefreshToken = tokenPair.RefreshToken
	r.ExpiresIn = tokenPair.ExpiresIn
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=72"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required,min=8"`
}
