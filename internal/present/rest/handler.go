package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/RYGhub/ryglfg"
	"github.com/RYGhub/ryglfg/guard"
	"github.com/RYGhub/ryglfg/internal/domain"
	"github.com/RYGhub/ryglfg/internal/present/rest/middleware"
	"github.com/RYGhub/ryglfg/internal/present/rest/presenter"
	"github.com/RYGhub/ryglfg/internal/service"
	"github.com/RYGhub/ryglfg/internal/usecase"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type Handler struct {
	announcement *usecase.AnnouncementUsecase
	response     *usecase.ResponseUsecase
	webhook      *usecase.WebhookUsecase
	signal       *service.SignalService
}

func NewHandler(
	announcement *usecase.AnnouncementUsecase,
	response *usecase.ResponseUsecase,
	webhook *usecase.WebhookUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		announcement: announcement,
		response:     response,
		webhook:      webhook,
		signal:       signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, auth *middleware.AuthMiddleware) {
	identified := auth.RequireIdentity

	e.GET("/auth", h.handleAuth, identified)

	e.GET("/lfg", h.handleList, identified)
	e.POST("/lfg", h.handleCreate, identified)
	e.GET("/lfg/:aid", h.handleGet, identified)
	e.PUT("/lfg/:aid", h.handleEdit, identified)
	e.DELETE("/lfg/:aid", h.handleDelete, identified)
	e.PATCH("/lfg/:aid/start", h.handleStart, identified)
	e.PATCH("/lfg/:aid/cancel", h.handleCancel, identified)
	e.PUT("/lfg/:aid/answer", h.handleAnswer, identified)

	e.GET("/webhook", h.handleWebhookList, identified)
	e.POST("/webhook", h.handleWebhookCreate, identified)
	e.DELETE("/webhook/:wid", h.handleWebhookDelete, identified)
	e.POST("/webhook/:wid/test", h.handleWebhookTest, identified)

	e.GET("/realtime", h.handleRealtime, identified)
}

func requester(c echo.Context) (guard.Subject, bool) {
	subject, ok := c.Request().Context().Value(domain.SubjectCtxKey).(guard.Subject)
	return subject, ok
}

// respondError translates the domain error taxonomy into HTTP statuses.
func respondError(c echo.Context, err error) error {
	var permission domain.PermissionError
	if errors.As(err, &permission) {
		return presenter.Forbidden(c, permission.Scope)
	}

	if errors.Is(err, domain.ErrStateConflict) {
		return presenter.Conflict(c, "LFG is not in the `LOOKING_FOR_GROUP` state.")
	}

	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		if notFound.Resource == "webhook" {
			return presenter.NotFound(c, "No such webhook.")
		}
		return presenter.NotFound(c, "No such LFG.")
	}

	return presenter.InternalError(c, err)
}

func (h *Handler) handleAuth(c echo.Context) error {
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}
	return presenter.OK(c, ryglfg.Claims{
		Subject:     subject.ID,
		Permissions: subject.Permissions,
	})
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	limit := defaultListLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil || limitInt < 0 {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offsetInt, err := strconv.Atoi(offsetStr)
		if err != nil || offsetInt < 0 {
			return presenter.BadRequestMessage(c, "invalid offset parameter")
		}
		offset = offsetInt
	}

	filter := domain.AnnouncementFilter{Limit: limit, Offset: offset}
	if stateStr := c.QueryParam("filter_state"); stateStr != "" {
		state, ok := domain.ParseAnnouncementState(stateStr)
		if !ok {
			return presenter.BadRequestMessage(c, "invalid filter_state parameter")
		}
		filter.State = &state
	}

	announcements, err := h.announcement.List(ctx, subject, filter)
	if err != nil {
		return respondError(c, err)
	}

	views := make([]ryglfg.AnnouncementFull, 0, len(announcements))
	for _, announcement := range announcements {
		views = append(views, ryglfg.NewAnnouncementFull(announcement))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	var data ryglfg.AnnouncementEditable
	if err := c.Bind(&data); err != nil {
		return presenter.BadRequest(c, err)
	}

	announcement, err := h.announcement.Create(ctx, subject, c.QueryParam("user"), domain.AnnouncementDraft{
		Title:         data.Title,
		Description:   data.Description,
		OpeningTime:   data.OpeningTime,
		AutostartTime: data.AutostartTime,
	})
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, ryglfg.NewAnnouncementFull(announcement))
}

func pathAID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("aid"), 10, 64)
}

func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	aid, err := pathAID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aid")
	}

	announcement, err := h.announcement.Get(ctx, subject, aid)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, ryglfg.NewAnnouncementFull(announcement))
}

func (h *Handler) handleEdit(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	aid, err := pathAID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aid")
	}

	var data ryglfg.AnnouncementEditable
	if err := c.Bind(&data); err != nil {
		return presenter.BadRequest(c, err)
	}

	announcement, err := h.announcement.Edit(ctx, subject, aid, domain.AnnouncementDraft{
		Title:         data.Title,
		Description:   data.Description,
		OpeningTime:   data.OpeningTime,
		AutostartTime: data.AutostartTime,
	})
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, ryglfg.NewAnnouncementFull(announcement))
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	aid, err := pathAID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aid")
	}

	if err := h.announcement.Delete(ctx, subject, aid); err != nil {
		return respondError(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleStart(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	aid, err := pathAID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aid")
	}

	announcement, err := h.announcement.Start(ctx, subject, c.QueryParam("user"), aid)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, ryglfg.NewAnnouncementFull(announcement))
}

func (h *Handler) handleCancel(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	aid, err := pathAID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aid")
	}

	announcement, err := h.announcement.Cancel(ctx, subject, c.QueryParam("user"), aid)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, ryglfg.NewAnnouncementFull(announcement))
}

func (h *Handler) handleAnswer(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	aid, err := pathAID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aid")
	}

	var data ryglfg.ResponseEditable
	if err := c.Bind(&data); err != nil {
		return presenter.BadRequest(c, err)
	}
	choice := domain.ResponseChoice(data.Choice)
	if !choice.Valid() {
		return presenter.BadRequestMessage(c, "invalid choice")
	}

	response, announcement, created, err := h.response.Answer(ctx, subject, c.QueryParam("user"), aid, choice)
	if err != nil {
		return respondError(c, err)
	}

	view := ryglfg.NewResponseFull(response, announcement)
	if created {
		return presenter.Created(c, view)
	}
	return presenter.OK(c, view)
}

func (h *Handler) handleWebhookList(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	webhooks, err := h.webhook.List(ctx, subject)
	if err != nil {
		return respondError(c, err)
	}

	views := make([]ryglfg.WebhookFull, 0, len(webhooks))
	for _, webhook := range webhooks {
		views = append(views, ryglfg.NewWebhookFull(webhook))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleWebhookCreate(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	var data ryglfg.WebhookEditable
	if err := c.Bind(&data); err != nil {
		return presenter.BadRequest(c, err)
	}
	if data.Format == "" {
		data.Format = string(domain.FormatRYGLFG)
	}
	format := domain.WebhookFormat(data.Format)
	if !format.Valid() {
		return presenter.BadRequestMessage(c, "unsupported webhook format")
	}
	if data.URL == "" {
		return presenter.BadRequestMessage(c, "url is required")
	}

	webhook, err := h.webhook.Create(ctx, subject, data.URL, format)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, ryglfg.NewWebhookFull(webhook))
}

func (h *Handler) handleWebhookDelete(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	wid, err := strconv.ParseInt(c.Param("wid"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid wid")
	}

	if err := h.webhook.Delete(ctx, subject, wid); err != nil {
		return respondError(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleWebhookTest(c echo.Context) error {
	ctx := c.Request().Context()
	subject, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c)
	}

	wid, err := strconv.ParseInt(c.Param("wid"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid wid")
	}

	if err := h.webhook.Test(ctx, subject, wid); err != nil {
		return respondError(c, err)
	}
	return presenter.NoContent(c)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtime streams dispatched event envelopes over a websocket.
// Purely best-effort: a dropped connection loses events.
func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime stream is not enabled")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan []byte)
	go h.signal.Realtime(ctx, output)

	// Drain client frames: heartbeats are ignored, a read error means
	// the peer is gone.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-output:
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.DebugContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
