package dto

import (
	"tutorhub/internal/domains/user/model"
	"tutorhub/shared"
	gDto "tutorhub/shared/dto"

	"github.com/lib/pq"
)

type UserResponse struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Subjects   []string `json:"subjects,omitempty"`
	HourlyRate float64  `json:"hourlyRate,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Active     bool     `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(user model.User) {
	r.ID = user.ID
	r.Email = user.Email
	r.Name = user.Name
	r.Role = user.Role
	r.Subjects = user.Subjects
	r.HourlyRate = user.HourlyRate
	r.Bio = user.Bio
	r.Active = user.Active
	r.Metadata.FromModel(user.Metadata)
}

type UpdateProfileRequest struct {
	Name       string   `json:"name"       validate:"omitempty,min=2,max=100"`
	Subjects   []string `json:"subjects"   validate:"omitempty,dive,min=1,max=100"`
	HourlyRate *float64 `json:"hourlyRate" validate:"omitempty,gte=0"`
	Bio        string   `json:"bio"        validate:"omitempty,max=2000"`
}

func (r UpdateProfileRequest) IsEmpty() bool {
	return r.Name == "" && r.Subjects == nil && r.HourlyRate == nil && r.Bio == ""
}

func (r UpdateProfileRequest) Fields() map[string]any {
	fields := map[string]any{}

	if r.Name != "" {
		fields[model.FieldName] = r.Name
	}

	if r.Subjects != nil {
		fields[model.FieldSubjects] = pq.StringArray(r.Subjects)
	}

	if r.HourlyRate != nil {
		fields[model.FieldHourlyRate] = *r.HourlyRate
	}

	if r.Bio != "" {
		fields[model.FieldBio] = r.Bio
	}

	return fields
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"totalPage"`
	TotalData int            `json:"totalData"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
