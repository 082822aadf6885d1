package dto

import (
	"tutorhub/internal/domains/performance/model"
)

type PerformanceResponse struct {
	Subject       string  `json:"subject"`
	LecturesCount int     `json:"lecturesCount"`
	TotalHours    float64 `json:"totalHours"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}

func (r *PerformanceResponse) FromModel(mod model.Performance) {
	r.Subject = mod.Subject
	r.LecturesCount = mod.LecturesCount
	r.TotalHours = model.Round1(mod.TotalHours)
	r.AverageRating = model.Round1(mod.AverageRating)
	r.TotalRatings = mod.TotalRatings
}

func FromModels(models []model.Performance) []PerformanceResponse {
	res := make([]PerformanceResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type StudentSubjectStats struct {
	Subject       string  `json:"subject"`
	LecturesCount int     `json:"lecturesCount"`
	TotalHours    float64 `json:"totalHours"`
	TutorsCount   int     `json:"tutorsCount"`
}

type TutorFeedback struct {
	TutorName string `json:"tutorName"`
	Subject   string `json:"subject"`
	Feedback  string `json:"feedback"`
	Date      string `json:"date"`
}

type StudentReportResponse struct {
	Performances   []PerformanceResponse `json:"performances"`
	SubjectStats   []StudentSubjectStats `json:"subjectStats"`
	TutorFeedbacks []TutorFeedback       `json:"tutorFeedbacks"`
}

type TutorSubjectStats struct {
	Subject       string  `json:"subject"`
	LecturesCount int     `json:"lecturesCount"`
	TotalHours    float64 `json:"totalHours"`
	StudentsCount int     `json:"studentsCount"`
	AverageRating float64 `json:"averageRating"`
}

type TutorReportResponse struct {
	Performances  []PerformanceResponse `json:"performances"`
	SubjectStats  []TutorSubjectStats   `json:"subjectStats"`
	OverallRating float64               `json:"overallRating"`
	TotalLectures int                   `json:"totalLectures"`
}
