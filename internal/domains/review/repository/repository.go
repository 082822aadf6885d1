package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"
	"tutorhub/infras/otel"
	"tutorhub/infras/postgres"
	"tutorhub/internal/domains/review/model"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	gRepo "tutorhub/shared/repository"
)

var ErrAlreadyReviewed = failure.Conflict("you have already reviewed this tutor")

const (
	statsQuery = `SELECT COALESCE(AVG(rating), 0)::float8 AS average,
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE rating = 1) AS one,
	COUNT(*) FILTER (WHERE rating = 2) AS two,
	COUNT(*) FILTER (WHERE rating = 3) AS three,
	COUNT(*) FILTER (WHERE rating = 4) AS four,
	COUNT(*) FILTER (WHERE rating = 5) AS five
FROM reviews
WHERE tutor_id = :tutor_id`

	// voteQuery records one vote per user and bumps the matching counter only when the vote is new.
	voteQuery = `WITH vote AS (
	INSERT INTO review_votes (review_id, user_id, helpful, created_at)
	VALUES (:review_id, :user_id, :helpful, :at)
	ON CONFLICT (review_id, user_id) DO NOTHING
	RETURNING helpful
)
UPDATE reviews SET
	helpful = reviews.helpful + CASE WHEN vote.helpful THEN 1 ELSE 0 END,
	not_helpful = reviews.not_helpful + CASE WHEN vote.helpful THEN 0 ELSE 1 END,
	modified_at = :at
FROM vote
WHERE reviews.id = :review_id`
)

type Review interface {
	Insert(ctx context.Context, model model.Review) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Review, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Review, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Stats(ctx context.Context, tutorID string) (model.Stats, error)
	Vote(ctx context.Context, reviewID, userID string, helpful bool, at time.Time) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Review]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Review {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Review](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Insert reports a second review of the same tutor by the same student as ErrAlreadyReviewed.
func (r *repositoryImpl) Insert(ctx context.Context, review model.Review) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".review.Insert")
	defer scope.End()

	err := r.Repository.Insert(ctx, review)
	if gRepo.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
		return ErrAlreadyReviewed
	}

	return err //nolint:wrapcheck
}

func (r *repositoryImpl) Stats(ctx context.Context, tutorID string) (model.Stats, error) {
	rows := []model.Stats{}
	if err := r.QueryNamed(ctx, &rows, statsQuery, map[string]any{"tutor_id": tutorID}); err != nil {
		return model.Stats{}, fmt.Errorf("failed to get review stats: %w", err)
	}

	if len(rows) == 0 {
		return model.Stats{}, nil
	}

	return rows[0], nil
}

// Vote reports false when the user had already voted on the review.
func (r *repositoryImpl) Vote(ctx context.Context, reviewID, userID string, helpful bool, at time.Time) (bool, error) {
	affected, err := r.ExecNamed(ctx, voteQuery, map[string]any{
		"review_id": reviewID,
		"user_id":   userID,
		"helpful":   helpful,
		"at":        at,
	})
	if err != nil {
		return false, fmt.Errorf("failed to vote on review: %w", err)
	}

	return affected > 0, nil
}
