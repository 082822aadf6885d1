package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tutorhub/infras/otel"
	bookingModel "tutorhub/internal/domains/booking/model"
	bookingRepo "tutorhub/internal/domains/booking/repository"
	"tutorhub/internal/domains/review/model"
	"tutorhub/internal/domains/review/model/dto"
	"tutorhub/internal/domains/review/repository"
	userModel "tutorhub/internal/domains/user/model"
	userRepo "tutorhub/internal/domains/user/repository"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ReasonAlreadyReviewed = "already reviewed"
	ReasonNoSession       = "no completed sessions with this tutor"
)

var (
	errInvalidRating  = failure.BadRequestFromString("rating must be between 1 and 5")
	errNoSession      = failure.Forbidden("you can only review tutors after completing a session with them")
	errReviewNotFound = failure.NotFound("review not found")
	errAlreadyVoted   = failure.Conflict("you have already voted on this review")
)

type Review interface {
	Create(ctx context.Context, req dto.CreateReviewRequest) (dto.ReviewResponse, error)
	GetTutorReviews(ctx context.Context, tutorID string, params gDto.QueryParams) (dto.TutorReviewsResponse, error)
	CanReview(ctx context.Context, tutorID string) (dto.CanReviewResponse, error)
	Update(ctx context.Context, reviewID string, req dto.UpdateReviewRequest) (dto.ReviewResponse, error)
	Vote(ctx context.Context, reviewID string, req dto.VoteRequest) (dto.ReviewResponse, error)
}

type serviceImpl struct {
	reviewRepo  repository.Review
	bookingRepo bookingRepo.Booking
	userRepo    userRepo.User
	clock       timezone.Clock
	otel        otel.Otel
}

func New(
	reviewRepo repository.Review,
	bookingRepo bookingRepo.Booking,
	userRepo userRepo.User,
	clock timezone.Clock,
	otel otel.Otel,
) Review {
	return &serviceImpl{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		clock:       clock,
		otel:        otel,
	}
}

// Create stores the caller's review of a tutor they finished a session with.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReviewRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	if req.Rating < model.MinRating || req.Rating > model.MaxRating {
		return res, errInvalidRating
	}

	comment := strings.TrimSpace(req.Comment)

	completed, err := s.bookingRepo.Exist(ctx, completedSessions(caller, req.TutorID, req.BookingID))
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to check completed booking")

		return res, fmt.Errorf("failed to check completed booking: %w", err)
	}

	if !completed {
		return res, errNoSession
	}

	reviewed, err := s.reviewRepo.Exist(ctx, authorOf(caller, req.TutorID))
	if err != nil {
		log.Error().Err(err).Str("tutor_id", req.TutorID).Msg("failed to check existing review")

		return res, fmt.Errorf("failed to check existing review: %w", err)
	}

	if reviewed {
		return res, repository.ErrAlreadyReviewed
	}

	review := req.ToModel(caller, comment, s.clock.Now())

	if err = s.reviewRepo.Insert(ctx, review); err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return res, err
		}

		log.Error().Err(err).Str("tutor_id", req.TutorID).Msg("failed to insert review")

		return res, fmt.Errorf("failed to insert review: %w", err)
	}

	students, err := s.authors(ctx, []model.Review{review})
	if err != nil {
		return res, err
	}

	res.FromModel(review, students)

	return res, nil
}

// GetTutorReviews pages through a tutor's reviews newest first, with the tutor's rating stats.
func (s *serviceImpl) GetTutorReviews(ctx context.Context, tutorID string, params gDto.QueryParams) (res dto.TutorReviewsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetTutorReviews")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if uuid.Validate(tutorID) != nil {
		return res, failure.BadRequestFromString("invalid tutor ID")
	}

	stats, err := s.reviewRepo.Stats(ctx, tutorID)
	if err != nil {
		log.Error().Err(err).Str("tutor_id", tutorID).Msg("failed to get review stats")

		return res, fmt.Errorf("failed to get review stats: %w", err)
	}

	params.SortBy = constant.FieldCreatedAt
	params.SortDir = gDto.SortDirDesc

	reviews, err := s.reviewRepo.GetAll(ctx, params, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldTutorID, Operator: gDto.FilterOperatorEq, Value: tutorID, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	})
	if err != nil {
		log.Error().Err(err).Str("tutor_id", tutorID).Msg("failed to get reviews")

		return res, fmt.Errorf("failed to get reviews: %w", err)
	}

	students, err := s.authors(ctx, reviews)
	if err != nil {
		return res, err
	}

	res.FromModels(reviews, students, stats, params.Limit)

	return res, nil
}

// CanReview tells the caller whether a review of the tutor would be accepted, and with which booking.
func (s *serviceImpl) CanReview(ctx context.Context, tutorID string) (res dto.CanReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CanReview")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	if uuid.Validate(tutorID) != nil {
		return res, failure.BadRequestFromString("invalid tutor ID")
	}

	reviewed, err := s.reviewRepo.Exist(ctx, authorOf(caller, tutorID))
	if err != nil {
		log.Error().Err(err).Str("tutor_id", tutorID).Msg("failed to check existing review")

		return res, fmt.Errorf("failed to check existing review: %w", err)
	}

	if reviewed {
		res.Reason = ReasonAlreadyReviewed

		return res, nil
	}

	booking, err := s.bookingRepo.Get(ctx, completedSessions(caller, tutorID, ""), bookingModel.FieldID)
	if err != nil {
		log.Error().Err(err).Str("tutor_id", tutorID).Msg("failed to get completed booking")

		return res, fmt.Errorf("failed to get completed booking: %w", err)
	}

	if booking.ID == constant.Empty {
		res.Reason = ReasonNoSession

		return res, nil
	}

	res.CanReview = true
	res.BookingID = booking.ID

	return res, nil
}

// Update rewrites the rating and comment of the caller's own review.
func (s *serviceImpl) Update(ctx context.Context, reviewID string, req dto.UpdateReviewRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	if req.Rating < model.MinRating || req.Rating > model.MaxRating {
		return res, errInvalidRating
	}

	review, err := s.find(ctx, reviewID)
	if err != nil {
		return res, err
	}

	if review.StudentID != caller {
		return res, failure.Forbidden("you can only edit your own reviews")
	}

	now := s.clock.Now()
	review.Rating = req.Rating
	review.Comment = strings.TrimSpace(req.Comment)
	review.ModifiedAt = now
	review.ModifiedBy = caller

	err = s.reviewRepo.Update(ctx, map[string]any{
		model.FieldRating:        review.Rating,
		model.FieldComment:       review.Comment,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: caller,
	}, byID(review.ID))
	if err != nil {
		log.Error().Err(err).Str("review_id", review.ID).Msg("failed to update review")

		return res, fmt.Errorf("failed to update review: %w", err)
	}

	students, err := s.authors(ctx, []model.Review{review})
	if err != nil {
		return res, err
	}

	res.FromModel(review, students)

	return res, nil
}

// Vote counts the caller's helpful or not helpful vote, once per review.
func (s *serviceImpl) Vote(ctx context.Context, reviewID string, req dto.VoteRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Vote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	if req.Helpful == nil {
		return res, failure.BadRequestFromString("helpful is required")
	}

	review, err := s.find(ctx, reviewID)
	if err != nil {
		return res, err
	}

	counted, err := s.reviewRepo.Vote(ctx, review.ID, caller, *req.Helpful, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("review_id", review.ID).Msg("failed to vote on review")

		return res, fmt.Errorf("failed to vote on review: %w", err)
	}

	if !counted {
		return res, errAlreadyVoted
	}

	if *req.Helpful {
		review.Helpful++
	} else {
		review.NotHelpful++
	}

	students, err := s.authors(ctx, []model.Review{review})
	if err != nil {
		return res, err
	}

	res.FromModel(review, students)

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, reviewID string) (model.Review, error) {
	if uuid.Validate(reviewID) != nil {
		return model.Review{}, failure.BadRequestFromString("invalid review ID")
	}

	review, err := s.reviewRepo.Get(ctx, byID(reviewID))
	if err != nil {
		log.Error().Err(err).Str("review_id", reviewID).Msg("failed to get review")

		return review, fmt.Errorf("failed to get review: %w", err)
	}

	if review.ID == constant.Empty {
		return review, errReviewNotFound
	}

	return review, nil
}

// authors loads the names of the students who wrote reviews.
func (s *serviceImpl) authors(ctx context.Context, reviews []model.Review) (map[string]userModel.User, error) {
	students := map[string]userModel.User{}
	if len(reviews) == 0 {
		return students, nil
	}

	ids := make([]string, len(reviews))
	for i, review := range reviews {
		ids[i] = review.StudentID
	}

	found, err := s.userRepo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: userModel.FieldID, Operator: gDto.FilterOperatorIn, Value: ids, Table: userModel.TableName},
		},
	}, userModel.FieldID, userModel.FieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to get review authors")

		return nil, fmt.Errorf("failed to get review authors: %w", err)
	}

	for _, user := range found {
		students[user.ID] = user
	}

	return students, nil
}

func byID(reviewID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: reviewID, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

func authorOf(studentID, tutorID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: studentID, Table: model.TableName},
			gDto.Filter{Field: model.FieldTutorID, Operator: gDto.FilterOperatorEq, Value: tutorID, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

// completedSessions matches the student's completed bookings with the tutor, narrowed to bookingID when given.
func completedSessions(studentID, tutorID, bookingID string) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: bookingModel.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: studentID, Table: bookingModel.TableName},
		gDto.Filter{Field: bookingModel.FieldTutorID, Operator: gDto.FilterOperatorEq, Value: tutorID, Table: bookingModel.TableName},
		gDto.Filter{Field: bookingModel.FieldStatus, Operator: gDto.FilterOperatorEq, Value: string(bookingModel.StatusCompleted), Table: bookingModel.TableName},
	}

	if bookingID != "" {
		filters = append(filters, gDto.Filter{Field: bookingModel.FieldID, Operator: gDto.FilterOperatorEq, Value: bookingID, Table: bookingModel.TableName})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}
