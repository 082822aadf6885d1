package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"tutorhub/infras/otel"
	"tutorhub/infras/postgres"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	gRepo "tutorhub/shared/repository"
)

const slotConflictMessage = "slot conflict"

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Insert maps the tutor overlap exclusion constraint to a conflict.
func (r *repositoryImpl) Insert(ctx context.Context, booking model.Booking) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Insert")
	defer scope.End()

	err := r.Repository.Insert(ctx, booking)
	if gRepo.IsPqError(err, constant.PqErrorCodeExclusionViolation) {
		return failure.Conflict(slotConflictMessage)
	}

	return err //nolint:wrapcheck
}

func (r *repositoryImpl) UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateAffected")
	defer scope.End()

	affected, err := r.Repository.UpdateAffected(ctx, req, filter)
	if gRepo.IsPqError(err, constant.PqErrorCodeExclusionViolation) {
		return 0, failure.Conflict(slotConflictMessage)
	}

	return affected, err //nolint:wrapcheck
}
