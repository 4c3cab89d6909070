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

type ParticipationService interface {
	CreateParticipation(ctx context.Context, actor domain.Actor, jobID uint) (domain.Participation, error)
	UpdateParticipationState(ctx context.Context, actor domain.Actor, id uint, target domain.ParticipationState) (domain.Participation, error)
	GetParticipation(ctx context.Context, id uint) (domain.Participation, error)
	ListParticipations(ctx context.Context, jobID uint) ([]domain.Participation, error)
}

type ParticipationHandler struct {
	svc  ParticipationService
	uSvc UserService
}

func NewParticipationHandler(svc ParticipationService, uSvc UserService) *ParticipationHandler {
	return &ParticipationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleApply godoc
// @Summary      Apply to a job
// @Description  Creates an application for the caller. A canceled or declined application is reopened instead.
// @Tags         participations
// @Produce      json
// @Param        jobID  path      int  true  "Job ID"
// @Success      201    {object}  domain.Participation
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      410    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /jobs/{jobID}/participations [post]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleApply(ctx *gin.Context) {
	actor, respErr := actorFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	jobID, respErr := parseID(ctx, "jobID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.CreateParticipation(ctx.Request.Context(), actor, jobID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleApply -> h.svc.CreateParticipation -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

// HandleListParticipations godoc
// @Summary      List the participations of a job
// @Tags         participations
// @Produce      json
// @Param        jobID  path      int  true  "Job ID"
// @Success      200    {array}   domain.Participation
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /jobs/{jobID}/participations [get]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleListParticipations(ctx *gin.Context) {
	jobID, respErr := parseID(ctx, "jobID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ps, err := h.svc.ListParticipations(ctx.Request.Context(), jobID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleListParticipations -> h.svc.ListParticipations -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, ps)
}

// HandleGetParticipation godoc
// @Summary      Get a participation
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true  "Participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /participations/{participationID} [get]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleGetParticipation(ctx *gin.Context) {
	id, respErr := parseID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.GetParticipation(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleGetParticipation -> h.svc.GetParticipation -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// HandleUpdateState godoc
// @Summary      Change the state of a participation
// @Description  Organizers accept, decline and confirm; participants cancel and re-apply. States: 1 participated, 2 applied, 3 declined, 4 accepted, 5 canceled.
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        participationID  path      int                                 true  "Participation ID"
// @Param        input            body      request.UpdateParticipationRequest  true  "Target state"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Failure      410              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /participations/{participationID} [patch]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleUpdateState(ctx *gin.Context) {
	actor, respErr := actorFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateParticipationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	p, err := h.svc.UpdateParticipationState(ctx.Request.Context(), actor, id, domain.ParticipationState(req.State))
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleUpdateState -> h.svc.UpdateParticipationState -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, p)
}
