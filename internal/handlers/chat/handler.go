package chat

import (
	"net/http"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/chat/model/dto"
	"tutorhub/internal/domains/chat/service"
	"tutorhub/shared/constant"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/validator"
	"tutorhub/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Chat
	otel    otel.Otel
}

func New(service service.Chat, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/chats", handler.GetChats)
	router.Patch("/chats/{chatId}/read", handler.MarkAsRead)
	router.Route("/chats/{userId}/messages", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetMessages)
		routerGroup.Post("/", handler.SendMessage)
	})
}

// GetMessages returns the thread between the caller and another user.
// @Summary Get chat messages
// @Tags Chat
// @Produce json
// @Param userId path string true "Other user ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetMessagesResponse] "Thread"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/chats/{userId}/messages [get]
// @Security BearerAuth
func (handler *Handler) GetMessages(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMessages")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	otherUserID := chi.URLParam(request, constant.RequestParamUserID)

	res, err := handler.service.GetMessages(ctx, otherUserID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get chat messages")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// SendMessage posts a message to the thread.
// @Summary Send a chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Param userId path string true "Other user ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Data[dto.MessageResponse] "Stored message"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/chats/{userId}/messages [post]
// @Security BearerAuth
func (handler *Handler) SendMessage(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SendMessage")
	defer scope.End()

	req := dto.SendMessageRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	otherUserID := chi.URLParam(request, constant.RequestParamUserID)

	res, err := handler.service.Send(ctx, otherUserID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to send chat message")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Chat message sent")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetChats lists the caller's threads.
// @Summary List chats
// @Tags Chat
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetChatsResponse] "Threads"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/chats [get]
// @Security BearerAuth
func (handler *Handler) GetChats(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetChats")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	res, err := handler.service.GetChats(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get chats")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// MarkAsRead clears the caller's unread messages in a thread.
// @Summary Mark chat as read
// @Tags Chat
// @Produce json
// @Param chatId path string true "Chat ID"
// @Success 200 {object} response.Data[dto.MarkReadResponse] "Marked messages"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/chats/{chatId}/read [patch]
// @Security BearerAuth
func (handler *Handler) MarkAsRead(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkAsRead")
	defer scope.End()

	chatID := chi.URLParam(request, constant.RequestParamChatID)

	res, err := handler.service.MarkAsRead(ctx, chatID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark chat as read")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
