package performance

import (
	"net/http"
	"tutorhub/infras/otel"
	"tutorhub/internal/domains/performance/service"
	"tutorhub/shared/constant"
	"tutorhub/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Performance
	otel    otel.Otel
}

func New(service service.Performance, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/performance", func(routerGroup chi.Router) {
		routerGroup.Get("/student", handler.StudentReport)
		routerGroup.Get("/tutor", handler.TutorReport)
	})
}

// StudentReport returns the caller's learning report.
// @Summary Student performance
// @Tags Performance
// @Produce json
// @Success 200 {object} response.Data[dto.StudentReportResponse] "Report"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performance/student [get]
// @Security BearerAuth
func (handler *Handler) StudentReport(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".StudentReport")
	defer scope.End()

	res, err := handler.service.StudentReport(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build student report")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// TutorReport returns the caller's teaching report.
// @Summary Tutor performance
// @Tags Performance
// @Produce json
// @Success 200 {object} response.Data[dto.TutorReportResponse] "Report"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performance/tutor [get]
// @Security BearerAuth
func (handler *Handler) TutorReport(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TutorReport")
	defer scope.End()

	res, err := handler.service.TutorReport(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build tutor report")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
