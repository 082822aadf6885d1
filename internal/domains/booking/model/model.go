package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"tutorhub/config"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldStudentID       = "student_id"
	FieldTutorID         = "tutor_id"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldStatus          = "status"
	FieldSubject         = "subject"
	FieldPlatform        = "platform"
	FieldMeetingID       = "meeting_id"
	FieldVideoLink       = "video_link"
	FieldRating          = "rating"
	FieldStudentFeedback = "student_feedback"
	FieldTutorFeedback   = "tutor_feedback"
	FieldMessage         = "message"

	FieldTimeChangeNewStartTime = "tc_new_start_time"
	FieldTimeChangeNewEndTime   = "tc_new_end_time"
	FieldTimeChangeRequestedBy  = "tc_requested_by"
	FieldTimeChangeStatus       = "tc_status"

	FieldReminder15Sent = "reminder_15_sent"
	FieldReminder10Sent = "reminder_10_sent"
	FieldReminder5Sent  = "reminder_5_sent"
)

const (
	MinDuration = 15 * time.Minute
	MaxDuration = 8 * time.Hour
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}

	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Active bookings hold their slot in the tutor's calendar.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Platform string

const (
	PlatformJitsi  Platform = "Jitsi Meet"
	PlatformGoogle Platform = "Google Meet"
	PlatformZoom   Platform = "Zoom"
	PlatformTeams  Platform = "Microsoft Teams"
	PlatformSkype  Platform = "Skype"
	PlatformOther  Platform = "Other"
)

var platforms = []Platform{PlatformJitsi, PlatformGoogle, PlatformZoom, PlatformTeams, PlatformSkype, PlatformOther}

var errUnsupportedPlatform = errors.New("unsupported platform")

// Validate implements the enum validation tag.
func (p Platform) Validate(_ *config.Config) error {
	if p == "" || slices.Contains(platforms, p) {
		return nil
	}

	return errUnsupportedPlatform
}

// SelfHosted reports whether the meeting room is derived from the meeting id.
func (p Platform) SelfHosted() bool {
	return p == PlatformJitsi
}

type TimeChangeStatus string

const (
	TimeChangePending  TimeChangeStatus = "pending"
	TimeChangeAccepted TimeChangeStatus = "accepted"
	TimeChangeRejected TimeChangeStatus = "rejected"
)

type TimeChangeRequest struct {
	NewStartTime *time.Time `db:"tc_new_start_time"`
	NewEndTime   *time.Time `db:"tc_new_end_time"`
	RequestedBy  *string    `db:"tc_requested_by"`
	Status       *string    `db:"tc_status"`
}

func (t TimeChangeRequest) Exists() bool {
	return t.Status != nil
}

func (t TimeChangeRequest) Pending() bool {
	return t.Status != nil && TimeChangeStatus(*t.Status) == TimeChangePending
}

type Reminders struct {
	Sent15 bool `db:"reminder_15_sent"`
	Sent10 bool `db:"reminder_10_sent"`
	Sent5  bool `db:"reminder_5_sent"`
}

type ReminderWindow struct {
	Before time.Duration
	Field  string
}

// ReminderWindows are swept in this order; each fires at most once per booking.
var ReminderWindows = []ReminderWindow{
	{Before: 15 * time.Minute, Field: FieldReminder15Sent},
	{Before: 10 * time.Minute, Field: FieldReminder10Sent},
	{Before: 5 * time.Minute, Field: FieldReminder5Sent},
}

type Booking struct {
	ID              string    `db:"id"`
	StudentID       string    `db:"student_id"`
	TutorID         string    `db:"tutor_id"`
	StartTime       time.Time `db:"start_time"`
	EndTime         time.Time `db:"end_time"`
	Status          Status    `db:"status"`
	Subject         string    `db:"subject"`
	Platform        Platform  `db:"platform"`
	MeetingID       string    `db:"meeting_id"`
	VideoLink       string    `db:"video_link"`
	Rating          *int      `db:"rating"`
	StudentFeedback string    `db:"student_feedback"`
	TutorFeedback   string    `db:"tutor_feedback"`
	Message         string    `db:"message"`
	TimeChangeRequest
	Reminders
	model.Metadata
}

func (b Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

func (b Booking) Hours() float64 {
	return b.Duration().Hours()
}

func (b Booking) IsParticipant(userID string) bool {
	return userID != "" && (userID == b.StudentID || userID == b.TutorID)
}

// Counterpart returns the other participant, or "" when userID is not one.
func (b Booking) Counterpart(userID string) string {
	switch userID {
	case b.StudentID:
		return b.TutorID
	case b.TutorID:
		return b.StudentID
	}

	return ""
}

func (b Booking) Rated() bool {
	return b.Rating != nil
}

// NeedsVideoLink is true for self-hosted meetings whose link was never derived.
func (b Booking) NeedsVideoLink() bool {
	return b.Platform.SelfHosted() && b.VideoLink == "" && b.MeetingID != ""
}

func VideoLink(baseURL, meetingID string) string {
	if baseURL == "" {
		baseURL = "https://meet.jit.si"
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), meetingID)
}

func FilterByID(id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

// FilterByIDAndStatus matches the booking only while it is still in the expected status.
func FilterByIDAndStatus(id string, expected Status) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: TableName},
			gDto.Filter{
				ArgName:  "expected_status",
				Field:    FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    expected,
				Table:    TableName,
			},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

// OverlapFilter selects the tutor's active bookings intersecting [start, end).
// excludeID skips the booking being rescheduled.
func OverlapFilter(tutorID string, start, end time.Time, excludeID string) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: FieldTutorID, Operator: gDto.FilterOperatorEq, Value: tutorID, Table: TableName},
		gDto.Filter{
			ArgName:  "active_status",
			Field:    FieldStatus,
			Operator: gDto.FilterOperatorIn,
			Value:    []Status{StatusPending, StatusConfirmed},
			Table:    TableName,
		},
		gDto.Filter{ArgName: "overlap_end", Field: FieldStartTime, Operator: gDto.FilterOperatorLess, Value: end, Table: TableName},
		gDto.Filter{ArgName: "overlap_start", Field: FieldEndTime, Operator: gDto.FilterOperatorGreater, Value: start, Table: TableName},
	}

	if excludeID != "" {
		filters = append(filters, gDto.Filter{
			ArgName:  "exclude_id",
			Field:    FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    excludeID,
			Table:    TableName,
		})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}
