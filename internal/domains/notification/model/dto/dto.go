package dto

import (
	"time"
	"tutorhub/internal/domains/notification/model"
	"tutorhub/shared/constant"
	gModel "tutorhub/shared/model"
	"tutorhub/shared/timezone"

	"github.com/google/uuid"
)

// NotifyRequest is what other domains hand to the inbox.
type NotifyRequest struct {
	UserID    string
	Type      model.Type
	Title     string
	Message   string
	Link      string
	BookingID string
}

func (n NotifyRequest) ToModel(now time.Time) model.Notification {
	return model.Notification{
		ID:        uuid.NewString(),
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		BookingID: n.BookingID,
		Metadata:  gModel.NewMetadata(now, constant.ContextGuest),
	}
}

type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func (r *NotificationResponse) FromModel(mod model.Notification) {
	r.ID = mod.ID
	r.Type = string(mod.Type)
	r.Title = mod.Title
	r.Message = mod.Message
	r.Link = mod.Link
	r.BookingID = mod.BookingID
	r.Read = mod.Read
	r.CreatedAt = timezone.Format(mod.CreatedAt, constant.DateFormat)
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int                    `json:"unread"`
}

func (r *GetNotificationsResponse) FromModels(models []model.Notification) {
	r.Notifications = make([]NotificationResponse, len(models))

	for i, mod := range models {
		r.Notifications[i].FromModel(mod)

		if !mod.Read {
			r.Unread++
		}
	}
}
