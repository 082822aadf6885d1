package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"tutorhub/infras/otel"
	"tutorhub/infras/postgres"
	"tutorhub/internal/domains/chat/model"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/failure"
	gRepo "tutorhub/shared/repository"
)

var ErrChatExists = failure.Conflict("chat already exists")

type Chat interface {
	Insert(ctx context.Context, model model.Chat) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Chat, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Summaries(ctx context.Context, userID string, params gDto.QueryParams) ([]model.Summary, error)
}

type Message interface {
	Insert(ctx context.Context, model model.Message) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Message, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

// summariesQuery lists a user's threads with their latest message and the
// number of unread messages from the other side, most recent activity first.
const summariesQuery = `
SELECT c.id, c.student_id, c.tutor_id, c.created_at, c.modified_at, c.created_by, c.modified_by,
       last.message    AS last_message,
       last.sender_id  AS last_sender_id,
       last.created_at AS last_message_at,
       (SELECT COUNT(*) FROM chat_messages u
         WHERE u.chat_id = c.id AND u.sender_id <> :user_id AND NOT u.read) AS unread
FROM chats c
LEFT JOIN LATERAL (
    SELECT m.message, m.sender_id, m.created_at
    FROM chat_messages m
    WHERE m.chat_id = c.id
    ORDER BY m.created_at DESC
    LIMIT 1
) last ON TRUE
WHERE c.student_id = :user_id OR c.tutor_id = :user_id
ORDER BY COALESCE(last.created_at, c.created_at) DESC, c.id`

type chatRepositoryImpl struct {
	gRepo.Repository[model.Chat]
	otel otel.Otel
}

func NewChat(db *postgres.Connection, otel otel.Otel) Chat {
	return &chatRepositoryImpl{
		Repository: gRepo.NewRepository[model.Chat](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Insert reports a lost race on the (student_id, tutor_id) unique key as ErrChatExists.
func (r *chatRepositoryImpl) Insert(ctx context.Context, chat model.Chat) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".chat.Insert")
	defer scope.End()

	err := r.Repository.Insert(ctx, chat)
	if gRepo.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
		return ErrChatExists
	}

	return err //nolint:wrapcheck
}

func (r *chatRepositoryImpl) Summaries(ctx context.Context, userID string, params gDto.QueryParams) ([]model.Summary, error) {
	query := summariesQuery
	args := map[string]any{"user_id": userID}

	if params.Limit > 0 {
		query += " LIMIT :limit OFFSET :offset"
		args["limit"] = params.Limit
		args["offset"] = params.Offset()
	}

	summaries := []model.Summary{}
	if err := r.QueryNamed(ctx, &summaries, query, args); err != nil {
		return summaries, err //nolint:wrapcheck
	}

	return summaries, nil
}

type messageRepositoryImpl struct {
	gRepo.Repository[model.Message]
}

func NewMessage(db *postgres.Connection, otel otel.Otel) Message {
	return &messageRepositoryImpl{
		Repository: gRepo.NewRepository[model.Message](model.MessageEntityName, model.MessageTableName, model.FieldMessageID, db, otel),
	}
}
