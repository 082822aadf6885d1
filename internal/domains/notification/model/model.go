package model

import (
	"tutorhub/shared/model"
)

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldType      = "type"
	FieldTitle     = "title"
	FieldMessage   = "message"
	FieldLink      = "link"
	FieldBookingID = "booking_id"
	FieldRead      = "read"

	InboxSize = 50
)

type Type string

const (
	TypeBookingRequest     Type = "booking_request"
	TypeBookingConfirmed   Type = "booking_confirmed"
	TypeBookingCancelled   Type = "booking_cancelled"
	TypeTimeChangeRequest  Type = "time_change_request"
	TypeTimeChangeAccepted Type = "time_change_accepted"
	TypeTimeChangeRejected Type = "time_change_rejected"
	TypeLectureLink        Type = "lecture_link"
	TypeSessionReminder    Type = "session_reminder"
)

type Notification struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Type      Type   `db:"type"`
	Title     string `db:"title"`
	Message   string `db:"message"`
	Link      string `db:"link"`
	BookingID string `db:"booking_id"`
	Read      bool   `db:"read"`
	model.Metadata
}
