package model

import (
	"time"
	"tutorhub/shared/model"
)

const (
	TableName  = "chats"
	EntityName = "chat"

	FieldID        = "id"
	FieldStudentID = "student_id"
	FieldTutorID   = "tutor_id"

	MessageTableName  = "chat_messages"
	MessageEntityName = "chat_message"

	FieldMessageID     = "id"
	FieldMessageChatID = "chat_id"
	FieldSenderID      = "sender_id"
	FieldMessage       = "message"
	FieldRead          = "read"

	MaxMessageLength = 1000
)

// Chat is the single thread between one student and one tutor.
type Chat struct {
	ID        string `db:"id"`
	StudentID string `db:"student_id"`
	TutorID   string `db:"tutor_id"`
	model.Metadata
}

func (c Chat) IsParticipant(userID string) bool {
	return userID != "" && (userID == c.StudentID || userID == c.TutorID)
}

type Message struct {
	ID       string `db:"id"`
	ChatID   string `db:"chat_id"`
	SenderID string `db:"sender_id"`
	Message  string `db:"message"`
	Read     bool   `db:"read"`
	model.Metadata
}

// Summary is a thread as seen from one participant's inbox.
type Summary struct {
	Chat
	LastMessage   *string    `db:"last_message"`
	LastSenderID  *string    `db:"last_sender_id"`
	LastMessageAt *time.Time `db:"last_message_at"`
	Unread        int        `db:"unread"`
}

// Counterpart is the participant that is not userID.
func (c Chat) Counterpart(userID string) string {
	if userID == c.StudentID {
		return c.TutorID
	}

	return c.StudentID
}
