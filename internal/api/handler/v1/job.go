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

type JobService interface {
	CreateJob(ctx context.Context, actor domain.Actor, eventID uint, spec domain.JobSpec) (domain.Job, error)
	UpdateJob(ctx context.Context, actor domain.Actor, jobID uint, patch domain.JobPatch) (domain.Job, error)
	DeleteJob(ctx context.Context, actor domain.Actor, jobID uint) error
	GetJob(ctx context.Context, id uint, includeDeleted bool) (domain.Job, error)
	ListJobs(ctx context.Context, eventID uint, includeDeleted bool) ([]domain.Job, error)
	Capacity(ctx context.Context, jobID uint) (domain.Capacity, error)
}

type JobHandler struct {
	svc  JobService
	uSvc UserService
}

func NewJobHandler(svc JobService, uSvc UserService) *JobHandler {
	return &JobHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListJobs godoc
// @Summary      List the jobs of an event
// @Tags         jobs
// @Produce      json
// @Param        eventID          path      int   true   "Event ID"
// @Param        include_deleted  query     bool  false  "Include soft-deleted jobs"
// @Success      200              {array}   domain.Job
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /events/{eventID}/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) HandleListJobs(ctx *gin.Context) {
	eventID, respErr := parseID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	deleted, respErr := includeDeleted(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	jobs, err := h.svc.ListJobs(ctx.Request.Context(), eventID, deleted)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleListJobs -> h.svc.ListJobs -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, jobs)
}

// HandleCreateJob godoc
// @Summary      Add a job to an event
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                 true  "Event ID"
// @Param        input    body      request.JobRequest  true  "Job details"
// @Success      201      {object}  domain.Job
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/jobs [post]
// @Security     BearerAuth
func (h *JobHandler) HandleCreateJob(ctx *gin.Context) {
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

	var req request.JobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	job, err := h.svc.CreateJob(ctx.Request.Context(), actor, eventID, req.ToSpec())
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleCreateJob -> h.svc.CreateJob -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, job)
}

// HandleGetJob godoc
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        jobID            path      int   true   "Job ID"
// @Param        include_deleted  query     bool  false  "Return the job even if soft-deleted"
// @Success      200              {object}  domain.Job
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /jobs/{jobID} [get]
// @Security     BearerAuth
func (h *JobHandler) HandleGetJob(ctx *gin.Context) {
	jobID, respErr := parseID(ctx, "jobID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	deleted, respErr := includeDeleted(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	job, err := h.svc.GetJob(ctx.Request.Context(), jobID, deleted)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleGetJob -> h.svc.GetJob -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, job)
}

// HandleGetCapacity godoc
// @Summary      Get the occupancy of a job
// @Tags         jobs
// @Produce      json
// @Param        jobID  path      int  true  "Job ID"
// @Success      200    {object}  response.CapacityResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /jobs/{jobID}/capacity [get]
// @Security     BearerAuth
func (h *JobHandler) HandleGetCapacity(ctx *gin.Context) {
	jobID, respErr := parseID(ctx, "jobID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	c, err := h.svc.Capacity(ctx.Request.Context(), jobID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleGetCapacity -> h.svc.Capacity -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, response.NewCapacityResponse(jobID, c))
}

// HandleUpdateJob godoc
// @Summary      Update a job
// @Description  Lowering total_positions below the number of accepted participants fails.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        jobID  path      int                       true  "Job ID"
// @Param        input  body      request.UpdateJobRequest  true  "Fields to change"
// @Success      200    {object}  domain.Job
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      410    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /jobs/{jobID} [patch]
// @Security     BearerAuth
func (h *JobHandler) HandleUpdateJob(ctx *gin.Context) {
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

	var req request.UpdateJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	job, err := h.svc.UpdateJob(ctx.Request.Context(), actor, jobID, req.ToPatch())
	if err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleUpdateJob -> h.svc.UpdateJob -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, job)
}

// HandleDeleteJob godoc
// @Summary      Delete a job
// @Description  Jobs without participations are removed. Others are soft-deleted and their pending or accepted participations canceled. The last job of an event cannot be deleted.
// @Tags         jobs
// @Param        jobID  path  int  true  "Job ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      410  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /jobs/{jobID} [delete]
// @Security     BearerAuth
func (h *JobHandler) HandleDeleteJob(ctx *gin.Context) {
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

	if err := h.svc.DeleteJob(ctx.Request.Context(), actor, jobID); err != nil {
		response.RenderErr(ctx, response.FromDomainErr(fmt.Errorf("HandleDeleteJob -> h.svc.DeleteJob -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}
