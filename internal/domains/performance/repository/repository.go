package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"
	"tutorhub/infras/otel"
	"tutorhub/infras/postgres"
	"tutorhub/internal/domains/performance/model"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	gRepo "tutorhub/shared/repository"

	"github.com/google/uuid"
)

const (
	addLectureQuery = `INSERT INTO performances (id, user_id, role, subject, lectures_count, total_hours, average_rating, total_ratings, created_at, created_by, modified_at, modified_by)
VALUES (:id, :user_id, :role, :subject, 1, :hours, 0, 0, :at, :by, :at, :by)
ON CONFLICT (user_id, role, subject) DO UPDATE SET
	lectures_count = performances.lectures_count + 1,
	total_hours = performances.total_hours + EXCLUDED.total_hours,
	modified_at = EXCLUDED.modified_at,
	modified_by = EXCLUDED.modified_by`

	addRatingQuery = `INSERT INTO performances (id, user_id, role, subject, lectures_count, total_hours, average_rating, total_ratings, created_at, created_by, modified_at, modified_by)
VALUES (:id, :user_id, :role, :subject, 0, 0, :rating, 1, :at, :by, :at, :by)
ON CONFLICT (user_id, role, subject) DO UPDATE SET
	average_rating = (performances.average_rating * performances.total_ratings + EXCLUDED.average_rating) / (performances.total_ratings + 1),
	total_ratings = performances.total_ratings + 1,
	modified_at = EXCLUDED.modified_at,
	modified_by = EXCLUDED.modified_by`
)

type Performance interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Performance, error)
	AddLecture(ctx context.Context, userID, role, subject string, hours float64, at time.Time) error
	AddRating(ctx context.Context, tutorID, subject string, rating int, at time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Performance]
}

func New(db *postgres.Connection, otel otel.Otel) Performance {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Performance](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// AddLecture bumps the lecture count and hours of the row, creating it when missing.
func (r *repositoryImpl) AddLecture(ctx context.Context, userID, role, subject string, hours float64, at time.Time) error {
	_, err := r.ExecNamed(ctx, addLectureQuery, map[string]any{
		"id":      uuid.NewString(),
		"user_id": userID,
		"role":    role,
		"subject": subject,
		"hours":   hours,
		"at":      at,
		"by":      constant.ContextGuest,
	})
	if err != nil {
		return fmt.Errorf("failed to add lecture: %w", err)
	}

	return nil
}

// AddRating folds one rating into the tutor's running average for the subject.
func (r *repositoryImpl) AddRating(ctx context.Context, tutorID, subject string, rating int, at time.Time) error {
	_, err := r.ExecNamed(ctx, addRatingQuery, map[string]any{
		"id":      uuid.NewString(),
		"user_id": tutorID,
		"role":    constant.RoleTutor,
		"subject": subject,
		"rating":  float64(rating),
		"at":      at,
		"by":      constant.ContextGuest,
	})
	if err != nil {
		return fmt.Errorf("failed to add rating: %w", err)
	}

	return nil
}
