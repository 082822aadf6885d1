package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
	"tutorhub/config"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/booking/model"
	"tutorhub/internal/domains/booking/model/dto"
	"tutorhub/internal/domains/booking/repository"
	notificationModel "tutorhub/internal/domains/notification/model"
	notificationDto "tutorhub/internal/domains/notification/model/dto"
	userModel "tutorhub/internal/domains/user/model"
	userRepo "tutorhub/internal/domains/user/repository"
	"tutorhub/shared"
	"tutorhub/shared/cache"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"

	defaultMeetingPrefix = "TutorHub_"
)

var (
	errConcurrentModification = failure.Conflict("booking was modified concurrently")
	errInvalidDate            = failure.BadRequestFromString("invalid date format")
	errBookInPast             = failure.BadRequestFromString("cannot book in the past")
)

// Notifier delivers inbox notifications.
type Notifier interface {
	Notify(ctx context.Context, req notificationDto.NotifyRequest) error
}

// Chatter appends a message to the student/tutor thread.
type Chatter interface {
	AppendMessage(ctx context.Context, studentID, tutorID, senderID, text string) error
}

// Aggregator keeps per-subject performance rollups.
type Aggregator interface {
	RecordCompletion(ctx context.Context, studentID, tutorID, subject string, hours float64) error
	RecordRating(ctx context.Context, tutorID, subject string, rating int) error
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, userID, role string) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, id string, status string) (dto.BookingResponse, error)
	ProposeTimeChange(ctx context.Context, id string, req dto.ProposeTimeChangeRequest) (dto.BookingResponse, error)
	RespondTimeChange(ctx context.Context, id string, req dto.RespondTimeChangeRequest) (dto.BookingResponse, error)
	SubmitRating(ctx context.Context, id string, req dto.SubmitRatingRequest) (dto.BookingResponse, error)
	SubmitTutorFeedback(ctx context.Context, id string, req dto.SubmitFeedbackRequest) (dto.BookingResponse, error)
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

type serviceImpl struct {
	repo       repository.Booking
	userRepo   userRepo.User
	notifier   Notifier
	chatter    Chatter
	aggregator Aggregator
	sink       event.Sink
	cfg        *config.Config
	cache      cache.RedisCache
	clock      timezone.Clock
	otel       otel.Otel
}

func New(
	repo repository.Booking,
	userRepo userRepo.User,
	notifier Notifier,
	chatter Chatter,
	aggregator Aggregator,
	sink event.Sink,
	cfg *config.Config,
	cache cache.RedisCache,
	clock timezone.Clock,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:       repo,
		userRepo:   userRepo,
		notifier:   notifier,
		chatter:    chatter,
		aggregator: aggregator,
		sink:       sink,
		cfg:        cfg,
		cache:      cache,
		clock:      clock,
		otel:       otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	if req.StudentID == "" || req.TutorID == "" || req.StartTime == "" || req.EndTime == "" {
		return res, failure.BadRequestFromString("studentId, tutorId, startTime and endTime are required")
	}

	if uuid.Validate(req.StudentID) != nil || uuid.Validate(req.TutorID) != nil {
		return res, failure.BadRequestFromString("invalid user ID format")
	}

	start, end, err := s.parseInterval(req.StartTime, req.EndTime, errBookInPast)
	if err != nil {
		return res, err
	}

	if req.StudentID == req.TutorID {
		return res, failure.BadRequestFromString("cannot book yourself")
	}

	users, err := s.participants(ctx, req.StudentID, req.TutorID)
	if err != nil {
		return res, err
	}

	tutor, ok := users[req.TutorID]
	if !ok {
		return res, failure.NotFound("tutor not found")
	}

	if !tutor.IsTutor() {
		return res, failure.BadRequestFromString("selected user is not a tutor")
	}

	student, ok := users[req.StudentID]
	if !ok {
		return res, failure.NotFound("student not found")
	}

	if !student.IsStudent() {
		return res, failure.BadRequestFromString("invalid student account")
	}

	if caller != req.StudentID {
		return res, failure.Forbidden("you can only create bookings for yourself")
	}

	conflict, err := s.repo.Exist(ctx, model.OverlapFilter(req.TutorID, start, end, ""))
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking conflicts")

		return res, fmt.Errorf("failed to check booking conflicts: %w", err)
	}

	if conflict {
		return res, failure.Conflict("slot conflict")
	}

	booking := req.ToModel(start, end, s.newMeetingID(), s.clock.Now())

	if err = s.repo.Insert(ctx, booking); err != nil {
		if failure.Is(err, http.StatusConflict) {
			return res, err
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	log.Info().Str("booking_id", booking.ID).Str("tutor_id", booking.TutorID).Msg("booking created")

	s.invalidate(ctx, booking.ID)

	res.FromModel(booking)
	res.WithParticipants(users)

	s.dispatch(ctx, booking.ID,
		s.notifyEffect(notificationDto.NotifyRequest{
			UserID:    booking.TutorID,
			Type:      notificationModel.TypeBookingRequest,
			Title:     "New booking request",
			Message:   fmt.Sprintf("%s requested a %s session on %s", student.Name, subjectOrDefault(booking.Subject), formatTime(booking.StartTime)),
			BookingID: booking.ID,
		}),
		s.chatEffect(booking, booking.StudentID, bookingRequestMessage(booking)),
		s.publishEffect(event.BookingNew, booking, res, booking.TutorID),
	)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, userID, role string) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	if userID == "" {
		userID = caller
	}

	if userID != caller && !isAdmin(ctx) {
		return res, failure.Forbidden("you can only view your own bookings")
	}

	var filter gDto.FilterGroup

	switch role {
	case constant.RoleStudent:
		filter = shared.FilterByID(userID, model.FieldStudentID, model.TableName)
	case constant.RoleTutor:
		filter = shared.FilterByID(userID, model.FieldTutorID, model.TableName)
	case "":
		filter = gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "participant_student", Field: model.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
				gDto.Filter{ArgName: "participant_tutor", Field: model.FieldTutorID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
			},
		}
	default:
		return res, failure.BadRequestFromString("role must be one of student tutor")
	}

	params.SortBy = model.FieldStartTime
	params.SortDir = gDto.SortDirAsc

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	ids := make([]string, 0, len(bookings)*2)
	for _, booking := range bookings {
		ids = append(ids, booking.StudentID, booking.TutorID)
	}

	users, err := s.participants(ctx, ids...)
	if err != nil {
		return res, err
	}

	res.FromModels(bookings, users, total, params.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save bookings to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, err := callerID(ctx)
	if err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if caller != res.StudentID && caller != res.TutorID && !isAdmin(ctx) {
			return dto.BookingResponse{}, failure.Forbidden("you are not a participant of this booking")
		}

		return res, nil
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.IsParticipant(caller) && !isAdmin(ctx) {
		return res, failure.Forbidden("you are not a participant of this booking")
	}

	res, err = s.respond(ctx, booking)
	if err != nil {
		return res, err
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking to cache")
	}

	return res, nil
}

// load fetches a booking by id, 404 when missing.
func (s *serviceImpl) load(ctx context.Context, id string) (model.Booking, error) {
	if uuid.Validate(id) != nil {
		return model.Booking{}, failure.NotFound("booking not found")
	}

	booking, err := s.repo.Get(ctx, model.FilterByID(id))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found")
	}

	return booking, nil
}

// participants looks up the given users by id, skipping unknown ones.
func (s *serviceImpl) participants(ctx context.Context, ids ...string) (map[string]userModel.User, error) {
	users := map[string]userModel.User{}
	if len(ids) == 0 {
		return users, nil
	}

	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: userModel.FieldID, Operator: gDto.FilterOperatorIn, Value: unique, Table: userModel.TableName},
		},
	}

	found, err := s.userRepo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking participants")

		return nil, fmt.Errorf("failed to get booking participants: %w", err)
	}

	for _, user := range found {
		users[user.ID] = user
	}

	return users, nil
}

// respond builds the API view of a booking with both participants expanded.
func (s *serviceImpl) respond(ctx context.Context, booking model.Booking) (res dto.BookingResponse, err error) {
	users, err := s.participants(ctx, booking.StudentID, booking.TutorID)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)
	res.WithParticipants(users)

	return res, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
}

// parseInterval applies the interval rules shared by creation and rescheduling.
// errPast is returned when the interval starts before now.
func (s *serviceImpl) parseInterval(startRaw, endRaw string, errPast error) (start, end time.Time, err error) {
	start, err = timezone.Parse(startRaw)
	if err != nil {
		return start, end, errInvalidDate
	}

	end, err = timezone.Parse(endRaw)
	if err != nil {
		return start, end, errInvalidDate
	}

	if !end.After(start) {
		return start, end, failure.BadRequestFromString("end time must be after start time")
	}

	if start.Before(s.clock.Now()) {
		return start, end, errPast
	}

	duration := end.Sub(start)

	if duration > model.MaxDuration {
		return start, end, failure.BadRequestFromString("booking duration cannot exceed 8 hours")
	}

	if duration < model.MinDuration {
		return start, end, failure.BadRequestFromString("booking duration must be at least 15 minutes")
	}

	return start, end, nil
}

func (s *serviceImpl) newMeetingID() string {
	prefix := s.cfg.App.Meeting.Prefix
	if prefix == "" {
		prefix = defaultMeetingPrefix
	}

	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *serviceImpl) videoLink(booking model.Booking) string {
	return model.VideoLink(s.cfg.App.Meeting.BaseURL, booking.MeetingID)
}

func callerID(ctx context.Context) (string, error) {
	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return "", failure.Unauthorized("unauthorized")
	}

	return caller, nil
}

func isAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role == constant.RoleAdmin
}

// modified stamps the audit columns on an update.
func modified(fields map[string]any, at time.Time, by string) map[string]any {
	fields[constant.FieldModifiedAt] = at
	fields[constant.FieldModifiedBy] = by

	return fields
}
