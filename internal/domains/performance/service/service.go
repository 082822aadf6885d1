package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"tutorhub/infras/otel"
	bookingModel "tutorhub/internal/domains/booking/model"
	bookingRepo "tutorhub/internal/domains/booking/repository"
	"tutorhub/internal/domains/performance/model"
	"tutorhub/internal/domains/performance/model/dto"
	"tutorhub/internal/domains/performance/repository"
	userModel "tutorhub/internal/domains/user/model"
	userRepo "tutorhub/internal/domains/user/repository"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/rs/zerolog/log"
)

const unknownName = "Unknown"

type Performance interface {
	RecordCompletion(ctx context.Context, studentID, tutorID, subject string, hours float64) error
	RecordRating(ctx context.Context, tutorID, subject string, rating int) error
	StudentReport(ctx context.Context) (dto.StudentReportResponse, error)
	TutorReport(ctx context.Context) (dto.TutorReportResponse, error)
}

type serviceImpl struct {
	repo        repository.Performance
	bookingRepo bookingRepo.Booking
	userRepo    userRepo.User
	clock       timezone.Clock
	otel        otel.Otel
}

func New(repo repository.Performance, bookingRepo bookingRepo.Booking, userRepo userRepo.User, clock timezone.Clock, otel otel.Otel) Performance {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		clock:       clock,
		otel:        otel,
	}
}

func (s *serviceImpl) RecordCompletion(ctx context.Context, studentID, tutorID, subject string, hours float64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecordCompletion")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	subject = subjectOrDefault(subject)
	now := s.clock.Now()

	if err = s.repo.AddLecture(ctx, studentID, constant.RoleStudent, subject, hours, now); err != nil {
		log.Error().Err(err).Str("user_id", studentID).Msg("failed to record student lecture")

		return fmt.Errorf("failed to record student lecture: %w", err)
	}

	if err = s.repo.AddLecture(ctx, tutorID, constant.RoleTutor, subject, hours, now); err != nil {
		log.Error().Err(err).Str("user_id", tutorID).Msg("failed to record tutor lecture")

		return fmt.Errorf("failed to record tutor lecture: %w", err)
	}

	return nil
}

func (s *serviceImpl) RecordRating(ctx context.Context, tutorID, subject string, rating int) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecordRating")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.repo.AddRating(ctx, tutorID, subjectOrDefault(subject), rating, s.clock.Now()); err != nil {
		log.Error().Err(err).Str("user_id", tutorID).Msg("failed to record tutor rating")

		return fmt.Errorf("failed to record tutor rating: %w", err)
	}

	return nil
}

func (s *serviceImpl) StudentReport(ctx context.Context) (res dto.StudentReportResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".StudentReport")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	performances, bookings, users, err := s.load(ctx, userID, constant.RoleStudent, bookingModel.FieldStudentID)
	if err != nil {
		return res, err
	}

	type acc struct {
		count  int
		hours  float64
		tutors map[string]struct{}
	}

	stats := map[string]*acc{}
	res.TutorFeedbacks = []dto.TutorFeedback{}

	for _, booking := range bookings {
		subject := subjectOrDefault(booking.Subject)

		a, ok := stats[subject]
		if !ok {
			a = &acc{tutors: map[string]struct{}{}}
			stats[subject] = a
		}

		a.count++
		a.hours += booking.Hours()
		a.tutors[booking.TutorID] = struct{}{}

		if booking.TutorFeedback != "" {
			res.TutorFeedbacks = append(res.TutorFeedbacks, dto.TutorFeedback{
				TutorName: nameOf(users, booking.TutorID),
				Subject:   subject,
				Feedback:  booking.TutorFeedback,
				Date:      timezone.Format(booking.EndTime, constant.DateFormat),
			})
		}
	}

	res.Performances = dto.FromModels(performances)
	res.SubjectStats = make([]dto.StudentSubjectStats, 0, len(stats))

	for _, subject := range slices.Sorted(maps.Keys(stats)) {
		a := stats[subject]
		res.SubjectStats = append(res.SubjectStats, dto.StudentSubjectStats{
			Subject:       subject,
			LecturesCount: a.count,
			TotalHours:    model.Round1(a.hours),
			TutorsCount:   len(a.tutors),
		})
	}

	return res, nil
}

func (s *serviceImpl) TutorReport(ctx context.Context) (res dto.TutorReportResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".TutorReport")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	performances, bookings, _, err := s.load(ctx, userID, constant.RoleTutor, bookingModel.FieldTutorID)
	if err != nil {
		return res, err
	}

	type acc struct {
		count    int
		hours    float64
		students map[string]struct{}
		ratings  int
		sum      int
	}

	stats := map[string]*acc{}
	ratings, sum := 0, 0

	for _, booking := range bookings {
		subject := subjectOrDefault(booking.Subject)

		a, ok := stats[subject]
		if !ok {
			a = &acc{students: map[string]struct{}{}}
			stats[subject] = a
		}

		a.count++
		a.hours += booking.Hours()
		a.students[booking.StudentID] = struct{}{}

		if booking.Rating != nil {
			a.ratings++
			a.sum += *booking.Rating
			ratings++
			sum += *booking.Rating
		}
	}

	res.Performances = dto.FromModels(performances)
	res.SubjectStats = make([]dto.TutorSubjectStats, 0, len(stats))
	res.TotalLectures = len(bookings)
	res.OverallRating = average(sum, ratings)

	for _, subject := range slices.Sorted(maps.Keys(stats)) {
		a := stats[subject]
		res.SubjectStats = append(res.SubjectStats, dto.TutorSubjectStats{
			Subject:       subject,
			LecturesCount: a.count,
			TotalHours:    model.Round1(a.hours),
			StudentsCount: len(a.students),
			AverageRating: average(a.sum, a.ratings),
		})
	}

	return res, nil
}

// load reads the stored rollups and the completed bookings the report is derived from.
func (s *serviceImpl) load(ctx context.Context, userID, role, participantField string) ([]model.Performance, []bookingModel.Booking, map[string]userModel.User, error) {
	performances, err := s.repo.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldSubject, SortDir: gDto.SortDirAsc}, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldUserID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
			gDto.Filter{Field: model.FieldRole, Operator: gDto.FilterOperatorEq, Value: role, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get performances")

		return nil, nil, nil, fmt.Errorf("failed to get performances: %w", err)
	}

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{SortBy: bookingModel.FieldStartTime, SortDir: gDto.SortDirAsc}, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: participantField, Operator: gDto.FilterOperatorEq, Value: userID, Table: bookingModel.TableName},
			gDto.Filter{ArgName: "completed_status", Field: bookingModel.FieldStatus, Operator: gDto.FilterOperatorEq, Value: bookingModel.StatusCompleted, Table: bookingModel.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get completed bookings")

		return nil, nil, nil, fmt.Errorf("failed to get completed bookings: %w", err)
	}

	users := map[string]userModel.User{}
	if role != constant.RoleStudent || len(bookings) == 0 {
		return performances, bookings, users, nil
	}

	ids := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		ids = append(ids, booking.TutorID)
	}

	slices.Sort(ids)

	found, err := s.userRepo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: userModel.FieldID, Operator: gDto.FilterOperatorIn, Value: slices.Compact(ids), Table: userModel.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get tutors")

		return nil, nil, nil, fmt.Errorf("failed to get tutors: %w", err)
	}

	for _, user := range found {
		users[user.ID] = user
	}

	return performances, bookings, users, nil
}

func subjectOrDefault(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return model.DefaultSubject
	}

	return subject
}

func nameOf(users map[string]userModel.User, id string) string {
	if user, ok := users[id]; ok && user.Name != "" {
		return user.Name
	}

	return unknownName
}

func average(sum, count int) float64 {
	if count == 0 {
		return 0
	}

	return model.Round1(float64(sum) / float64(count))
}
