package model

import (
	"slices"
	"time"
	"tutorhub/shared/constant"
	"tutorhub/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID         = "id"
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldName       = "name"
	FieldRole       = "role"
	FieldSubjects   = "subjects"
	FieldHourlyRate = "hourly_rate"
	FieldBio        = "bio"
	FieldActive     = "active"
	FieldLastLogin  = "last_login"
)

type User struct {
	ID         string         `db:"id"`
	Email      string         `db:"email"`
	Password   string         `db:"password"`
	Name       string         `db:"name"`
	Role       string         `db:"role"`
	Subjects   pq.StringArray `db:"subjects"`
	HourlyRate float64        `db:"hourly_rate"`
	Bio        string         `db:"bio"`
	Active     bool           `db:"active"`
	LastLogin  *time.Time     `db:"last_login"`
	model.Metadata
}

func (u User) IsTutor() bool {
	return u.Role == constant.RoleTutor
}

func (u User) IsStudent() bool {
	return u.Role == constant.RoleStudent
}

func (u User) Teaches(subject string) bool {
	return slices.Contains(u.Subjects, subject)
}
