package dto

import (
	"time"
	"tutorhub/internal/domains/review/model"
	userModel "tutorhub/internal/domains/user/model"
	"tutorhub/shared"
	"tutorhub/shared/constant"
	gModel "tutorhub/shared/model"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	TutorID   string `json:"tutorId"   validate:"required,uuid"`
	BookingID string `json:"bookingId" validate:"required,uuid"`
	Rating    int    `json:"rating"    validate:"required"`
	Comment   string `json:"comment"   validate:"notblank,max=1000"`
}

func (c *CreateReviewRequest) ToModel(studentID, comment string, now time.Time) model.Review {
	return model.Review{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TutorID:   c.TutorID,
		BookingID: c.BookingID,
		Rating:    c.Rating,
		Comment:   comment,
		Metadata:  gModel.NewMetadata(now, studentID),
	}
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required"`
	Comment string `json:"comment" validate:"notblank,max=1000"`
}

type VoteRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

type AuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReviewResponse struct {
	ID         string         `json:"id"`
	TutorID    string         `json:"tutorId"`
	BookingID  string         `json:"bookingId"`
	Student    AuthorResponse `json:"student"`
	Rating     int            `json:"rating"`
	Comment    string         `json:"comment"`
	Helpful    int            `json:"helpful"`
	NotHelpful int            `json:"notHelpful"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
}

func (r *ReviewResponse) FromModel(mod model.Review, students map[string]userModel.User) {
	r.ID = mod.ID
	r.TutorID = mod.TutorID
	r.BookingID = mod.BookingID
	r.Student = AuthorResponse{ID: mod.StudentID, Name: students[mod.StudentID].Name}
	r.Rating = mod.Rating
	r.Comment = mod.Comment
	r.Helpful = mod.Helpful
	r.NotHelpful = mod.NotHelpful
	r.CreatedAt = timezone.Format(mod.CreatedAt, constant.DateFormat)
	r.UpdatedAt = timezone.Format(mod.ModifiedAt, constant.DateFormat)
}

type DistributionResponse struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type StatsResponse struct {
	AverageRating float64                `json:"averageRating"`
	TotalReviews  int                    `json:"totalReviews"`
	Distribution  []DistributionResponse `json:"distribution"`
}

func (r *StatsResponse) FromModel(mod model.Stats) {
	r.AverageRating = mod.Average
	r.TotalReviews = mod.Total

	r.Distribution = make([]DistributionResponse, 0, model.MaxRating)
	for i, count := range mod.Distribution() {
		r.Distribution = append(r.Distribution, DistributionResponse{Rating: model.MaxRating - i, Count: count})
	}
}

type TutorReviewsResponse struct {
	Reviews   []ReviewResponse `json:"reviews"`
	Stats     StatsResponse    `json:"stats"`
	TotalPage int              `json:"totalPage"`
	TotalData int              `json:"totalData"`
}

func (r *TutorReviewsResponse) FromModels(reviews []model.Review, students map[string]userModel.User, stats model.Stats, limit int) {
	r.TotalData = stats.Total
	r.TotalPage = shared.CalculateTotalPage(stats.Total, limit)
	r.Stats.FromModel(stats)

	r.Reviews = make([]ReviewResponse, len(reviews))
	for i, mod := range reviews {
		r.Reviews[i].FromModel(mod, students)
	}
}

type CanReviewResponse struct {
	CanReview bool   `json:"canReview"`
	Reason    string `json:"reason,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
}
