package service

import (
	"context"
	"fmt"
	"tutorhub/config"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/user/model"
	"tutorhub/internal/domains/user/model/dto"
	"tutorhub/internal/domains/user/repository"
	"tutorhub/shared"
	"tutorhub/shared/cache"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetUser    = "user:get"
	cacheGetAllUser = "user:gets"
)

type User interface {
	GetAll(ctx context.Context, req gDto.QueryParams, role, subject string) (dto.GetUsersResponse, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.UserResponse, error)
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// directoryFilter matches active users, optionally narrowed to a role and a taught subject.
func directoryFilter(role, subject string) (gDto.FilterGroup, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldActive, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	switch role {
	case constant.Empty:
	case constant.RoleStudent, constant.RoleTutor:
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldRole, Value: role, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	default:
		return filter, failure.BadRequestFromString("role must be one of student tutor")
	}

	if subject != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldSubjects,
			ArgName:  "subject",
			Value:    subject,
			Operator: gDto.FilterOperatorAny,
			Table:    model.TableName,
		})
	}

	return filter, nil
}

// GetAll lists the directory sorted by name. Pages are cached until a profile changes.
func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, role, subject string) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter, err := directoryFilter(role, subject)
	if err != nil {
		return res, err
	}

	req.SortBy = model.FieldName
	req.SortDir = gDto.SortDirAsc

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllUser, req, filter)
	if s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for users")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to count users: %w", err)
	}

	users, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get users: %w", err)
	}

	res.FromModels(users, total, req.Limit)

	if saveErr := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to cache users")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetUser, id)
	if s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for user")

		return res, nil
	}

	user, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("user not found")
	}

	res.FromModel(user)

	if saveErr := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to cache user")
	}

	return res, nil
}

// UpdateProfile patches the caller's own profile. Subjects and hourly rate are tutor-only.
func (s *serviceImpl) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateProfile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty")
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	filter := shared.FilterByID(userID, model.FieldID, model.TableName)

	user, err := s.repo.Get(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("user not found")
	}

	if !user.IsTutor() && (req.Subjects != nil || req.HourlyRate != nil) {
		return res, failure.BadRequestFromString("only tutors can set subjects and hourly rate")
	}

	fields := req.Fields()
	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = userID

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		return res, fmt.Errorf("failed to update user: %w", err)
	}

	if delErr := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetUser, userID)); delErr != nil {
		log.Warn().Err(delErr).Str("user_id", userID).Msg("failed to evict cached user")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllUser)

	return s.Get(ctx, userID)
}
