package dto

import (
	"time"
	"tutorhub/internal/domains/booking/model"
	userModel "tutorhub/internal/domains/user/model"
	"tutorhub/shared"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	gModel "tutorhub/shared/model"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	StudentID string         `json:"studentId" validate:"required"`
	TutorID   string         `json:"tutorId"   validate:"required"`
	StartTime string         `json:"startTime" validate:"required"`
	EndTime   string         `json:"endTime"   validate:"required"`
	Subject   string         `json:"subject"   validate:"omitempty,max=100"`
	Platform  model.Platform `json:"platform"  validate:"enum"`
	Message   string         `json:"message"   validate:"omitempty,max=1000"`
}

func (c *CreateBookingRequest) ToModel(start, end time.Time, meetingID string, now time.Time) model.Booking {
	platform := c.Platform
	if platform == "" {
		platform = model.PlatformJitsi
	}

	return model.Booking{
		ID:        uuid.NewString(),
		StudentID: c.StudentID,
		TutorID:   c.TutorID,
		StartTime: start,
		EndTime:   end,
		Status:    model.StatusPending,
		Subject:   c.Subject,
		Platform:  platform,
		MeetingID: meetingID,
		Message:   c.Message,
		Metadata:  gModel.NewMetadata(now, c.StudentID),
	}
}

// UpdateBookingRequest is the PATCH body; a rating may ride along with a status change.
type UpdateBookingRequest struct {
	Status   string `json:"status"   validate:"omitempty"`
	Rating   *int   `json:"rating"   validate:"omitempty"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

func (u UpdateBookingRequest) IsEmpty() bool {
	return u.Status == "" && u.Rating == nil
}

type ProposeTimeChangeRequest struct {
	NewStartTime string `json:"newStartTime" validate:"required"`
	NewEndTime   string `json:"newEndTime"   validate:"required"`
}

type RespondTimeChangeRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type SubmitRatingRequest struct {
	Rating   int    `json:"rating"   validate:"required"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

type SubmitFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"notblank,max=2000"`
}

type ParticipantResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Subjects   []string `json:"subjects,omitempty"`
	HourlyRate float64  `json:"hourlyRate,omitempty"`
}

func (p *ParticipantResponse) FromModel(user userModel.User) {
	p.ID = user.ID
	p.Name = user.Name
	p.Email = user.Email

	if user.IsTutor() {
		p.Subjects = user.Subjects
		p.HourlyRate = user.HourlyRate
	}
}

type TimeChangeResponse struct {
	NewStartTime string `json:"newStartTime"`
	NewEndTime   string `json:"newEndTime"`
	RequestedBy  string `json:"requestedBy"`
	Status       string `json:"status"`
}

type BookingResponse struct {
	ID                string               `json:"id"`
	StudentID         string               `json:"studentId"`
	TutorID           string               `json:"tutorId"`
	Student           *ParticipantResponse `json:"student,omitempty"`
	Tutor             *ParticipantResponse `json:"tutor,omitempty"`
	StartTime         string               `json:"startTime"`
	EndTime           string               `json:"endTime"`
	Status            string               `json:"status"`
	Subject           string               `json:"subject"`
	Platform          string               `json:"platform"`
	MeetingID         string               `json:"meetingId"`
	VideoLink         string               `json:"videoLink,omitempty"`
	Rating            *int                 `json:"rating,omitempty"`
	StudentFeedback   string               `json:"studentFeedback,omitempty"`
	TutorFeedback     string               `json:"tutorFeedback,omitempty"`
	Message           string               `json:"message,omitempty"`
	TimeChangeRequest *TimeChangeResponse  `json:"timeChangeRequest,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.StudentID = mod.StudentID
	r.TutorID = mod.TutorID
	r.StartTime = timezone.Format(mod.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(mod.EndTime, constant.DateFormat)
	r.Status = string(mod.Status)
	r.Subject = mod.Subject
	r.Platform = string(mod.Platform)
	r.MeetingID = mod.MeetingID
	r.VideoLink = mod.VideoLink
	r.Rating = mod.Rating
	r.StudentFeedback = mod.StudentFeedback
	r.TutorFeedback = mod.TutorFeedback
	r.Message = mod.Message
	r.Metadata.FromModel(mod.Metadata)

	if tc := mod.TimeChangeRequest; tc.Exists() {
		r.TimeChangeRequest = &TimeChangeResponse{Status: *tc.Status}

		if tc.NewStartTime != nil {
			r.TimeChangeRequest.NewStartTime = timezone.Format(*tc.NewStartTime, constant.DateFormat)
		}

		if tc.NewEndTime != nil {
			r.TimeChangeRequest.NewEndTime = timezone.Format(*tc.NewEndTime, constant.DateFormat)
		}

		if tc.RequestedBy != nil {
			r.TimeChangeRequest.RequestedBy = *tc.RequestedBy
		}
	}
}

// WithParticipants expands the student and tutor from the given lookup.
func (r *BookingResponse) WithParticipants(users map[string]userModel.User) {
	if student, ok := users[r.StudentID]; ok {
		r.Student = &ParticipantResponse{}
		r.Student.FromModel(student)
	}

	if tutor, ok := users[r.TutorID]; ok {
		r.Tutor = &ParticipantResponse{}
		r.Tutor.FromModel(tutor)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"totalPage"`
	TotalData int               `json:"totalData"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, users map[string]userModel.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
		r.Bookings[i].WithParticipants(users)
	}
}
