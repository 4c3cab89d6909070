package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/happy2help/h2h-api/internal/api/handler/v1/request"
	"github.com/happy2help/h2h-api/internal/api/handler/v1/response"
	"github.com/happy2help/h2h-api/internal/domain"
)

type EventService interface {
	CreateEvent(ctx context.Context, actor domain.Actor, in domain.CreateEventInput) (domain.EventDetails, error)
	UpdateEvent(ctx context.Context, actor domain.Actor, eventID uint, patch domain.EventPatch) (domain.Event, error)
	DeleteEvent(ctx context.Context, actor domain.Actor, eventID uint) error
	GetEvent(ctx context.Context, eventID uint) (domain.EventDetails, error)
}

type EventHandler struct {
	svc  EventService
	uSvc UserService
}

func NewEventHandler(svc EventService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Creates an event with its location and jobs. Without an organisation the creator pays the event creation cost in credit points. Without jobs the event gets one job named after it.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event details"
// @Success      201    {object}  domain.EventDetails
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      402    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	actor, respErr := actorFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	details, err := h.svc.CreateEvent(ctx.Request.Context(), actor, req.ToInput())
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleCreateEvent -> h.svc.CreateEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, details)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Description  Returns the event with its location and live jobs
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.EventDetails
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	details, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleGetEvent -> h.svc.GetEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, details)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        input    body      request.UpdateEventRequest  true  "Fields to change"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [patch]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	actor, respErr := actorFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), actor, eventID, req.ToPatch())
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Deletes the event and its location. Jobs with participations are soft-deleted and their pending or accepted participations canceled.
// @Tags         events
// @Param        eventID  path  int  true  "Event ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	actor, respErr := actorFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), actor, eventID); err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}
