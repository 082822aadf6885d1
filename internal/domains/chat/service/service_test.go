package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"tutorhub/infras/otel/mocks"
	chatMocks "tutorhub/internal/domains/chat/mocks"
	"tutorhub/internal/domains/chat/model"
	"tutorhub/internal/domains/chat/model/dto"
	"tutorhub/internal/domains/chat/repository"
	"tutorhub/internal/domains/chat/service"
	userMocks "tutorhub/internal/domains/user/mocks"
	userModel "tutorhub/internal/domains/user/model"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
	"tutorhub/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	studentID = "11111111-1111-4111-8111-111111111111"
	tutorID   = "33333333-3333-4333-8333-333333333333"
	otherID   = "22222222-2222-4222-8222-222222222222"
	chatID    = "99999999-9999-4999-8999-999999999999"
)

type capture struct {
	events []event.Event
}

func (c *capture) Publish(_ context.Context, ev event.Event) error {
	c.events = append(c.events, ev)

	return nil
}

type fixture struct {
	svc      service.Chat
	chats    *chatMocks.MockChat
	messages *chatMocks.MockMessage
	users    *userMocks.MockUser
	sink     *capture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		chats:    chatMocks.NewMockChat(ctrl),
		messages: chatMocks.NewMockMessage(ctrl),
		users:    userMocks.NewMockUser(ctrl),
		sink:     &capture{},
	}

	clock := &timezone.FixedClock{At: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	f.svc = service.New(f.chats, f.messages, f.users, f.sink, clock, mocks.NewOtel())

	return f
}

func as(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func users(list ...userModel.User) []userModel.User {
	return list
}

var (
	student      = userModel.User{ID: studentID, Role: constant.RoleStudent}
	tutor        = userModel.User{ID: tutorID, Role: constant.RoleTutor}
	otherStudent = userModel.User{ID: otherID, Role: constant.RoleStudent}
	existingChat = model.Chat{ID: chatID, StudentID: studentID, TutorID: tutorID}
)

func TestChatService_AppendMessage(t *testing.T) {
	t.Run("existing thread", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
		f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Message) error {
			assert.Equal(t, chatID, m.ChatID)
			assert.Equal(t, studentID, m.SenderID)
			assert.Equal(t, "hello", m.Message)

			return nil
		})

		require.NoError(t, f.svc.AppendMessage(context.Background(), studentID, tutorID, studentID, "  hello "))
		require.Len(t, f.sink.events, 1)
		assert.Equal(t, event.ChatMessage, f.sink.events[0].Type)
		assert.ElementsMatch(t, []string{studentID, tutorID}, f.sink.events[0].Recipients)
	})

	t.Run("creates the thread on first message", func(t *testing.T) {
		f := newFixture(t)

		var created model.Chat

		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Chat{}, nil)
		f.chats.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c model.Chat) error {
			created = c

			return nil
		})
		f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Message) error {
			assert.Equal(t, created.ID, m.ChatID)

			return nil
		})

		require.NoError(t, f.svc.AppendMessage(context.Background(), studentID, tutorID, tutorID, "confirmed"))
		assert.Equal(t, studentID, created.StudentID)
		assert.Equal(t, tutorID, created.TutorID)
	})

	t.Run("concurrent creation reuses the winner", func(t *testing.T) {
		f := newFixture(t)

		gomock.InOrder(
			f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Chat{}, nil),
			f.chats.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(repository.ErrChatExists),
			f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil),
		)
		f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Message) error {
			assert.Equal(t, chatID, m.ChatID)

			return nil
		})

		require.NoError(t, f.svc.AppendMessage(context.Background(), studentID, tutorID, studentID, "hi"))
	})

	t.Run("sender outside the pair", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)

		err := f.svc.AppendMessage(context.Background(), studentID, tutorID, otherID, "hi")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("message insert failure", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
		f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		err := f.svc.AppendMessage(context.Background(), studentID, tutorID, studentID, "hi")
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
		assert.Empty(t, f.sink.events)
	})
}

func TestChatService_Send(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		other   string
		message string
		setup   func(f *fixture)
		code    int
	}{
		{
			name:    "student writes to tutor",
			caller:  studentID,
			other:   tutorID,
			message: "When do we start?",
			setup: func(f *fixture) {
				f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student, tutor), nil)
				f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
				f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			code: http.StatusOK,
		},
		{
			name:    "tutor writes to student",
			caller:  tutorID,
			other:   studentID,
			message: "At ten",
			setup: func(f *fixture) {
				f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student, tutor), nil)
				f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
				f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			code: http.StatusOK,
		},
		{
			name:    "empty after trimming",
			caller:  studentID,
			other:   tutorID,
			message: "   ",
			setup:   func(*fixture) {},
			code:    http.StatusBadRequest,
		},
		{
			name:    "too long",
			caller:  studentID,
			other:   tutorID,
			message: strings.Repeat("a", model.MaxMessageLength+1),
			setup:   func(*fixture) {},
			code:    http.StatusBadRequest,
		},
		{
			name:    "exactly the limit",
			caller:  studentID,
			other:   tutorID,
			message: strings.Repeat("é", model.MaxMessageLength),
			setup: func(f *fixture) {
				f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student, tutor), nil)
				f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
				f.messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			code: http.StatusOK,
		},
		{
			name:    "yourself",
			caller:  studentID,
			other:   studentID,
			message: "hi",
			setup:   func(*fixture) {},
			code:    http.StatusBadRequest,
		},
		{
			name:    "two students",
			caller:  studentID,
			other:   otherID,
			message: "hi",
			setup: func(f *fixture) {
				f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student, otherStudent), nil)
			},
			code: http.StatusBadRequest,
		},
		{
			name:    "unknown recipient",
			caller:  studentID,
			other:   otherID,
			message: "hi",
			setup: func(f *fixture) {
				f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student), nil)
			},
			code: http.StatusNotFound,
		},
		{
			name:    "malformed recipient",
			caller:  studentID,
			other:   "tutor",
			message: "hi",
			setup:   func(*fixture) {},
			code:    http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			res, err := f.svc.Send(as(tt.caller), tt.other, dto.SendMessageRequest{Message: tt.message})
			if tt.code == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, chatID, res.ChatID)
				assert.Equal(t, tt.caller, res.SenderID)
				assert.Equal(t, strings.TrimSpace(tt.message), res.Message)

				return
			}

			assert.Equal(t, tt.code, failure.GetCode(err))
		})
	}
}

func TestChatService_GetMessages(t *testing.T) {
	t.Run("returns the thread oldest first", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student, tutor), nil)
		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
		f.messages.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
		f.messages.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Message, error) {
				assert.Equal(t, constant.FieldCreatedAt, params.SortBy)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)

				return []model.Message{
					{ID: "m1", ChatID: chatID, SenderID: studentID, Message: "hi"},
					{ID: "m2", ChatID: chatID, SenderID: tutorID, Message: "hello"},
				}, nil
			})

		res, err := f.svc.GetMessages(as(tutorID), studentID, gDto.QueryParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, chatID, res.ChatID)
		require.Len(t, res.Messages, 2)
		assert.Equal(t, "m1", res.Messages[0].ID)
		assert.Equal(t, 2, res.TotalData)
		assert.Equal(t, 1, res.TotalPage)
	})

	t.Run("no thread yet", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(users(student, tutor), nil)
		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Chat{}, nil)

		res, err := f.svc.GetMessages(as(studentID), tutorID, gDto.QueryParams{})
		require.NoError(t, err)
		assert.Empty(t, res.ChatID)
		assert.Empty(t, res.Messages)
		assert.Equal(t, tutorID, res.TutorID)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetMessages(context.Background(), tutorID, gDto.QueryParams{})
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestChatService_GetChats(t *testing.T) {
	t.Run("lists threads with the other participant", func(t *testing.T) {
		f := newFixture(t)

		last := "see you tomorrow"
		sender := tutorID
		at := time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)

		f.chats.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			assert.Equal(t, gDto.FilterGroupOperatorOr, filter.Operator)

			return 2, nil
		})
		f.chats.EXPECT().Summaries(gomock.Any(), studentID, gomock.Any()).Return([]model.Summary{
			{Chat: existingChat, LastMessage: &last, LastSenderID: &sender, LastMessageAt: &at, Unread: 3},
			{Chat: model.Chat{ID: "c2", StudentID: studentID, TutorID: otherID}},
		}, nil)
		f.users.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any(), userModel.FieldID, userModel.FieldName, userModel.FieldRole).
			Return(users(userModel.User{ID: tutorID, Name: "Tia", Role: constant.RoleTutor}), nil)

		res, err := f.svc.GetChats(as(studentID), gDto.QueryParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalData)
		require.Len(t, res.Chats, 2)

		first := res.Chats[0]
		assert.Equal(t, chatID, first.ChatID)
		assert.Equal(t, tutorID, first.OtherUser.ID)
		assert.Equal(t, "Tia", first.OtherUser.Name)
		assert.Equal(t, 3, first.UnreadCount)
		require.NotNil(t, first.LastMessage)
		assert.Equal(t, last, first.LastMessage.Message)
		assert.Equal(t, tutorID, first.LastMessage.SenderID)

		second := res.Chats[1]
		assert.Equal(t, otherID, second.OtherUser.ID)
		assert.Empty(t, second.OtherUser.Name)
		assert.Nil(t, second.LastMessage)
		assert.Zero(t, second.UnreadCount)
	})

	t.Run("no threads", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
		f.chats.EXPECT().Summaries(gomock.Any(), tutorID, gomock.Any()).Return([]model.Summary{}, nil)

		res, err := f.svc.GetChats(as(tutorID), gDto.QueryParams{})
		require.NoError(t, err)
		assert.Empty(t, res.Chats)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
		f.chats.EXPECT().Summaries(gomock.Any(), tutorID, gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := f.svc.GetChats(as(tutorID), gDto.QueryParams{})
		assert.Error(t, err)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetChats(context.Background(), gDto.QueryParams{})
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestChatService_MarkAsRead(t *testing.T) {
	t.Run("marks messages from the other side", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
		f.messages.EXPECT().
			UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error) {
				assert.Equal(t, true, req[model.FieldRead])
				assert.Equal(t, tutorID, req[constant.FieldModifiedBy])

				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "chat_messages.sender_id <> :sender_id")
				assert.Equal(t, tutorID, args[model.FieldSenderID])
				assert.Equal(t, false, args["was_read"])

				return 4, nil
			})

		res, err := f.svc.MarkAsRead(as(tutorID), chatID)
		require.NoError(t, err)
		assert.Equal(t, chatID, res.ChatID)
		assert.Equal(t, int64(4), res.Marked)
	})

	t.Run("nothing unread", func(t *testing.T) {
		f := newFixture(t)

		f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existingChat, nil)
		f.messages.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		res, err := f.svc.MarkAsRead(as(studentID), chatID)
		require.NoError(t, err)
		assert.Zero(t, res.Marked)
	})

	tests := []struct {
		name   string
		caller string
		chatID string
		chat   *model.Chat
		code   int
		msg    string
	}{
		{name: "invalid id", caller: studentID, chatID: "nope", code: http.StatusBadRequest, msg: "invalid chat ID"},
		{name: "missing chat", caller: studentID, chatID: chatID, chat: &model.Chat{}, code: http.StatusNotFound, msg: "chat not found"},
		{name: "outsider", caller: otherID, chatID: chatID, chat: &existingChat, code: http.StatusForbidden, msg: "you are not part of this chat"},
		{name: "unauthenticated", chatID: chatID, code: http.StatusUnauthorized, msg: "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.chat != nil {
				f.chats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(*tt.chat, nil)
			}

			ctx := context.Background()
			if tt.caller != "" {
				ctx = as(tt.caller)
			}

			_, err := f.svc.MarkAsRead(ctx, tt.chatID)
			require.Error(t, err)
			assert.Equal(t, tt.code, failure.GetCode(err))
			assert.Equal(t, tt.msg, failure.GetMessage(err))
		})
	}
}
