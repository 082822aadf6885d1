package model

import (
	"math"
	"tutorhub/shared/model"
)

const (
	TableName  = "performances"
	EntityName = "performance"

	FieldID            = "id"
	FieldUserID        = "user_id"
	FieldRole          = "role"
	FieldSubject       = "subject"
	FieldLecturesCount = "lectures_count"
	FieldTotalHours    = "total_hours"
	FieldAverageRating = "average_rating"
	FieldTotalRatings  = "total_ratings"

	DefaultSubject = "General"
)

// Performance is a per-user, per-role, per-subject rollup.
type Performance struct {
	ID            string  `db:"id"`
	UserID        string  `db:"user_id"`
	Role          string  `db:"role"`
	Subject       string  `db:"subject"`
	LecturesCount int     `db:"lectures_count"`
	TotalHours    float64 `db:"total_hours"`
	AverageRating float64 `db:"average_rating"`
	TotalRatings  int     `db:"total_ratings"`
	model.Metadata
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
