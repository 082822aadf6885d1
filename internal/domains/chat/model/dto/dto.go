package dto

import (
	"time"
	"tutorhub/internal/domains/chat/model"
	userModel "tutorhub/internal/domains/user/model"
	"tutorhub/shared"
	"tutorhub/shared/constant"
	gModel "tutorhub/shared/model"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Message string `json:"message" validate:"notblank"`
}

func NewChat(studentID, tutorID string, now time.Time) model.Chat {
	return model.Chat{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TutorID:   tutorID,
		Metadata:  gModel.NewMetadata(now, constant.ContextGuest),
	}
}

func NewMessage(chatID, senderID, text string, now time.Time) model.Message {
	return model.Message{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		SenderID: senderID,
		Message:  text,
		Metadata: gModel.NewMetadata(now, senderID),
	}
}

type MessageResponse struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	SenderID  string `json:"senderId"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

func (r *MessageResponse) FromModel(mod model.Message) {
	r.ID = mod.ID
	r.ChatID = mod.ChatID
	r.SenderID = mod.SenderID
	r.Message = mod.Message
	r.CreatedAt = timezone.Format(mod.CreatedAt, constant.DateFormat)
}

type GetMessagesResponse struct {
	ChatID    string            `json:"chatId"`
	StudentID string            `json:"studentId"`
	TutorID   string            `json:"tutorId"`
	Messages  []MessageResponse `json:"messages"`
	TotalPage int               `json:"totalPage"`
	TotalData int               `json:"totalData"`
}

func (r *GetMessagesResponse) FromModels(chat model.Chat, messages []model.Message, total, limit int) {
	r.ChatID = chat.ID
	r.StudentID = chat.StudentID
	r.TutorID = chat.TutorID
	r.TotalData = total
	r.TotalPage = shared.CalculateTotalPage(total, limit)

	r.Messages = make([]MessageResponse, len(messages))
	for i, mod := range messages {
		r.Messages[i].FromModel(mod)
	}
}

type LastMessageResponse struct {
	Message   string `json:"message"`
	SenderID  string `json:"senderId"`
	CreatedAt string `json:"createdAt"`
}

type ParticipantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type ChatSummaryResponse struct {
	ChatID      string               `json:"chatId"`
	StudentID   string               `json:"studentId"`
	TutorID     string               `json:"tutorId"`
	OtherUser   ParticipantResponse  `json:"otherUser"`
	LastMessage *LastMessageResponse `json:"lastMessage"`
	UnreadCount int                  `json:"unreadCount"`
	UpdatedAt   string               `json:"updatedAt"`
}

// FromModel fills the summary for viewer. users holds the profiles known for the counterpart.
func (r *ChatSummaryResponse) FromModel(mod model.Summary, viewer string, users map[string]userModel.User) {
	r.ChatID = mod.ID
	r.StudentID = mod.StudentID
	r.TutorID = mod.TutorID
	r.UnreadCount = mod.Unread

	other := mod.Counterpart(viewer)
	r.OtherUser = ParticipantResponse{ID: other}

	if user, ok := users[other]; ok {
		r.OtherUser.Name = user.Name
		r.OtherUser.Role = user.Role
	}

	updated := mod.CreatedAt

	if mod.LastMessage != nil && mod.LastSenderID != nil && mod.LastMessageAt != nil {
		r.LastMessage = &LastMessageResponse{
			Message:   *mod.LastMessage,
			SenderID:  *mod.LastSenderID,
			CreatedAt: timezone.Format(*mod.LastMessageAt, constant.DateFormat),
		}
		updated = *mod.LastMessageAt
	}

	r.UpdatedAt = timezone.Format(updated, constant.DateFormat)
}

type GetChatsResponse struct {
	Chats     []ChatSummaryResponse `json:"chats"`
	TotalPage int                   `json:"totalPage"`
	TotalData int                   `json:"totalData"`
}

func (r *GetChatsResponse) FromModels(summaries []model.Summary, viewer string, users map[string]userModel.User, total, limit int) {
	r.TotalData = total
	r.TotalPage = shared.CalculateTotalPage(total, limit)

	r.Chats = make([]ChatSummaryResponse, len(summaries))
	for i, mod := range summaries {
		r.Chats[i].FromModel(mod, viewer, users)
	}
}

type MarkReadResponse struct {
	ChatID string `json:"chatId"`
	Marked int64  `json:"marked"`
}
