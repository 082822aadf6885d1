package model

import (
	"tutorhub/shared/model"
)

const (
	TableName  = "reviews"
	EntityName = "review"

	FieldID         = "id"
	FieldStudentID  = "student_id"
	FieldTutorID    = "tutor_id"
	FieldBookingID  = "booking_id"
	FieldRating     = "rating"
	FieldComment    = "comment"
	FieldHelpful    = "helpful"
	FieldNotHelpful = "not_helpful"

	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is a student's public verdict on a tutor, one per student and tutor.
type Review struct {
	ID         string `db:"id"`
	StudentID  string `db:"student_id"`
	TutorID    string `db:"tutor_id"`
	BookingID  string `db:"booking_id"`
	Rating     int    `db:"rating"`
	Comment    string `db:"comment"`
	Helpful    int    `db:"helpful"`
	NotHelpful int    `db:"not_helpful"`
	model.Metadata
}

// Stats aggregates every review of one tutor.
type Stats struct {
	Average float64 `db:"average"`
	Total   int     `db:"total"`
	One     int     `db:"one"`
	Two     int     `db:"two"`
	Three   int     `db:"three"`
	Four    int     `db:"four"`
	Five    int     `db:"five"`
}

// Distribution maps each star value to its review count, highest first.
func (s Stats) Distribution() []int {
	return []int{s.Five, s.Four, s.Three, s.Two, s.One}
}
