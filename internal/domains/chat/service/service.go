package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/chat/model"
	"tutorhub/internal/domains/chat/model/dto"
	"tutorhub/internal/domains/chat/repository"
	userModel "tutorhub/internal/domains/user/model"
	userRepo "tutorhub/internal/domains/user/repository"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Chat interface {
	AppendMessage(ctx context.Context, studentID, tutorID, senderID, text string) error
	GetMessages(ctx context.Context, otherUserID string, params gDto.QueryParams) (dto.GetMessagesResponse, error)
	Send(ctx context.Context, otherUserID string, req dto.SendMessageRequest) (dto.MessageResponse, error)
	GetChats(ctx context.Context, params gDto.QueryParams) (dto.GetChatsResponse, error)
	MarkAsRead(ctx context.Context, chatID string) (dto.MarkReadResponse, error)
}

type serviceImpl struct {
	chatRepo    repository.Chat
	messageRepo repository.Message
	userRepo    userRepo.User
	sink        event.Sink
	clock       timezone.Clock
	otel        otel.Otel
}

func New(
	chatRepo repository.Chat,
	messageRepo repository.Message,
	userRepo userRepo.User,
	sink event.Sink,
	clock timezone.Clock,
	otel otel.Otel,
) Chat {
	return &serviceImpl{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		sink:        sink,
		clock:       clock,
		otel:        otel,
	}
}

// AppendMessage writes into the student/tutor thread, creating it on first use.
func (s *serviceImpl) AppendMessage(ctx context.Context, studentID, tutorID, senderID, text string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppendMessage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	text, err = cleanMessage(text)
	if err != nil {
		return err
	}

	chat, err := s.thread(ctx, studentID, tutorID, true)
	if err != nil {
		return err
	}

	if !chat.IsParticipant(senderID) {
		return failure.Forbidden("sender is not part of this chat")
	}

	_, err = s.append(ctx, chat, senderID, text)

	return err
}

func (s *serviceImpl) GetMessages(ctx context.Context, otherUserID string, params gDto.QueryParams) (res dto.GetMessagesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMessages")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	studentID, tutorID, err := s.pair(ctx, caller, otherUserID)
	if err != nil {
		return res, err
	}

	chat, err := s.thread(ctx, studentID, tutorID, false)
	if err != nil {
		return res, err
	}

	if chat.ID == constant.Empty {
		chat = model.Chat{StudentID: studentID, TutorID: tutorID}
		res.FromModels(chat, nil, 0, params.Limit)

		return res, nil
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldMessageChatID, Operator: gDto.FilterOperatorEq, Value: chat.ID, Table: model.MessageTableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}

	total, err := s.messageRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to count chat messages")

		return res, fmt.Errorf("failed to count chat messages: %w", err)
	}

	params.SortBy = constant.FieldCreatedAt
	params.SortDir = gDto.SortDirAsc

	messages, err := s.messageRepo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to get chat messages")

		return res, fmt.Errorf("failed to get chat messages: %w", err)
	}

	res.FromModels(chat, messages, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Send(ctx context.Context, otherUserID string, req dto.SendMessageRequest) (res dto.MessageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Send")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	text, err := cleanMessage(req.Message)
	if err != nil {
		return res, err
	}

	studentID, tutorID, err := s.pair(ctx, caller, otherUserID)
	if err != nil {
		return res, err
	}

	chat, err := s.thread(ctx, studentID, tutorID, true)
	if err != nil {
		return res, err
	}

	message, err := s.append(ctx, chat, caller, text)
	if err != nil {
		return res, err
	}

	res.FromModel(message)

	return res, nil
}

// GetChats lists the caller's threads with the latest message and unread count of each.
func (s *serviceImpl) GetChats(ctx context.Context, params gDto.QueryParams) (res dto.GetChatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetChats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: caller, Table: model.TableName},
			gDto.Filter{Field: model.FieldTutorID, Operator: gDto.FilterOperatorEq, Value: caller, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorOr,
	}

	total, err := s.chatRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("user_id", caller).Msg("failed to count chats")

		return res, fmt.Errorf("failed to count chats: %w", err)
	}

	summaries, err := s.chatRepo.Summaries(ctx, caller, params)
	if err != nil {
		log.Error().Err(err).Str("user_id", caller).Msg("failed to get chats")

		return res, fmt.Errorf("failed to get chats: %w", err)
	}

	users, err := s.counterparts(ctx, caller, summaries)
	if err != nil {
		return res, err
	}

	res.FromModels(summaries, caller, users, total, params.Limit)

	return res, nil
}

// MarkAsRead marks every unread message the other participant sent in the chat.
func (s *serviceImpl) MarkAsRead(ctx context.Context, chatID string) (res dto.MarkReadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAsRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if caller == constant.Empty {
		return res, failure.Unauthorized("unauthorized")
	}

	if uuid.Validate(chatID) != nil {
		return res, failure.BadRequestFromString("invalid chat ID")
	}

	chat, err := s.chatRepo.Get(ctx, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: chatID, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	})
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("failed to get chat")

		return res, fmt.Errorf("failed to get chat: %w", err)
	}

	if chat.ID == constant.Empty {
		return res, failure.NotFound("chat not found")
	}

	if !chat.IsParticipant(caller) {
		return res, failure.Forbidden("you are not part of this chat")
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldMessageChatID, Operator: gDto.FilterOperatorEq, Value: chat.ID, Table: model.MessageTableName},
			gDto.Filter{Field: model.FieldSenderID, Operator: gDto.FilterOperatorNotEq, Value: caller, Table: model.MessageTableName},
			gDto.Filter{Field: model.FieldRead, ArgName: "was_read", Operator: gDto.FilterOperatorEq, Value: false, Table: model.MessageTableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}

	marked, err := s.messageRepo.UpdateAffected(ctx, map[string]any{
		model.FieldRead:          true,
		constant.FieldModifiedAt: s.clock.Now(),
		constant.FieldModifiedBy: caller,
	}, filter)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to mark chat messages as read")

		return res, fmt.Errorf("failed to mark chat messages as read: %w", err)
	}

	res.ChatID = chat.ID
	res.Marked = marked

	return res, nil
}

// counterparts loads the profile of the other participant of every summary.
func (s *serviceImpl) counterparts(ctx context.Context, viewer string, summaries []model.Summary) (map[string]userModel.User, error) {
	users := map[string]userModel.User{}
	if len(summaries) == 0 {
		return users, nil
	}

	ids := make([]string, len(summaries))
	for i, summary := range summaries {
		ids[i] = summary.Counterpart(viewer)
	}

	found, err := s.userRepo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: userModel.FieldID, Operator: gDto.FilterOperatorIn, Value: ids, Table: userModel.TableName},
		},
	}, userModel.FieldID, userModel.FieldName, userModel.FieldRole)
	if err != nil {
		log.Error().Err(err).Msg("failed to get chat counterparts")

		return nil, fmt.Errorf("failed to get chat counterparts: %w", err)
	}

	for _, user := range found {
		users[user.ID] = user
	}

	return users, nil
}

// pair resolves which of the two users is the student and which the tutor.
func (s *serviceImpl) pair(ctx context.Context, caller, other string) (studentID, tutorID string, err error) {
	if uuid.Validate(other) != nil {
		return "", "", failure.BadRequestFromString("invalid user ID")
	}

	if caller == other {
		return "", "", failure.BadRequestFromString("cannot chat with yourself")
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: userModel.FieldID, Operator: gDto.FilterOperatorIn, Value: []string{caller, other}, Table: userModel.TableName},
		},
	}

	found, err := s.userRepo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get chat participants")

		return "", "", fmt.Errorf("failed to get chat participants: %w", err)
	}

	users := make(map[string]userModel.User, len(found))
	for _, user := range found {
		users[user.ID] = user
	}

	me, ok := users[caller]
	if !ok {
		return "", "", failure.NotFound("user not found")
	}

	them, ok := users[other]
	if !ok {
		return "", "", failure.NotFound("other user not found")
	}

	switch {
	case me.IsStudent() && them.IsTutor():
		return me.ID, them.ID, nil
	case me.IsTutor() && them.IsStudent():
		return them.ID, me.ID, nil
	}

	return "", "", failure.BadRequestFromString("can only chat between student and tutor")
}

// thread finds the pair's chat. With create it inserts a missing one, tolerating a concurrent insert.
func (s *serviceImpl) thread(ctx context.Context, studentID, tutorID string, create bool) (model.Chat, error) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: studentID, Table: model.TableName},
			gDto.Filter{Field: model.FieldTutorID, Operator: gDto.FilterOperatorEq, Value: tutorID, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}

	chat, err := s.chatRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get chat")

		return chat, fmt.Errorf("failed to get chat: %w", err)
	}

	if chat.ID != constant.Empty || !create {
		return chat, nil
	}

	chat = dto.NewChat(studentID, tutorID, s.clock.Now())

	err = s.chatRepo.Insert(ctx, chat)
	if err == nil {
		return chat, nil
	}

	if !errors.Is(err, repository.ErrChatExists) {
		log.Error().Err(err).Msg("failed to create chat")

		return model.Chat{}, fmt.Errorf("failed to create chat: %w", err)
	}

	chat, err = s.chatRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get chat")

		return chat, fmt.Errorf("failed to get chat: %w", err)
	}

	if chat.ID == constant.Empty {
		return chat, errors.New("chat vanished after conflicting insert")
	}

	return chat, nil
}

func (s *serviceImpl) append(ctx context.Context, chat model.Chat, senderID, text string) (model.Message, error) {
	now := s.clock.Now()
	message := dto.NewMessage(chat.ID, senderID, text, now)

	if err := s.messageRepo.Insert(ctx, message); err != nil {
		log.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to insert chat message")

		return message, fmt.Errorf("failed to insert chat message: %w", err)
	}

	if s.sink == nil {
		return message, nil
	}

	var payload dto.MessageResponse
	payload.FromModel(message)

	if err := s.sink.Publish(ctx, event.Event{
		Type:       event.ChatMessage,
		StudentID:  chat.StudentID,
		TutorID:    chat.TutorID,
		Recipients: []string{chat.StudentID, chat.TutorID},
		Payload:    payload,
		OccurredAt: now,
	}); err != nil {
		log.Warn().Err(err).Str("chat_id", chat.ID).Msg("failed to push chat message")
	}

	return message, nil
}

func cleanMessage(text string) (string, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return "", failure.BadRequestFromString("message cannot be empty")
	}

	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return "", failure.BadRequestFromString("message is too long, maximum 1000 characters allowed")
	}

	return text, nil
}
