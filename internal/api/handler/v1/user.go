package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/happy2help/h2h-api/internal/api/handler/v1/response"
	"github.com/happy2help/h2h-api/internal/api/middleware"
	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/service"
)

var errMissingUser = errors.New("no authenticated user in context")

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ResolveActor(ctx context.Context, userID uint) (domain.Actor, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Get the authenticated user
// @Description  Returns the caller's profile including the credit balance
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	userID, respErr := userIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
			return
		}

		err = fmt.Errorf("HandleGetMe -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func userIDFromContext(ctx *gin.Context) (uint, *response.Err) {
	userID := ctx.GetUint(middleware.ContextUserID)
	if userID == 0 {
		return 0, response.ErrUnauthorized(errMissingUser)
	}

	return userID, nil
}

// actorFromContext resolves the authenticated user and its organisations.
func actorFromContext(ctx *gin.Context, uSvc UserService) (domain.Actor, *response.Err) {
	userID, respErr := userIDFromContext(ctx)
	if respErr != nil {
		return domain.Actor{}, respErr
	}

	actor, err := uSvc.ResolveActor(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return domain.Actor{}, response.ErrUnauthorized(fmt.Errorf("user %d no longer exists", userID))
		}

		return domain.Actor{}, response.ErrInternalServerError(fmt.Errorf("uSvc.ResolveActor -> %w", err))
	}

	return actor, nil
}

func parseID(ctx *gin.Context, param string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", param, ctx.Param(param)))
	}

	return uint(id), nil
}

func includeDeleted(ctx *gin.Context) (bool, *response.Err) {
	raw := ctx.Query("include_deleted")
	if raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, response.ErrBadRequest(fmt.Errorf("invalid include_deleted %q", raw))
	}

	return v, nil
}
