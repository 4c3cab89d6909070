package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/happy2help/h2h-api/internal/domain"
)

// Err is the error body every failed request renders.
type Err struct {
	Err            error             `json:"-"`
	HTTPStatusCode int               `json:"-"`
	StatusText     string            `json:"status"`
	Code           domain.Code       `json:"code,omitempty"`
	ErrorMsg       string            `json:"error,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Int("status", e.HTTPStatusCode),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorMsg:       err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrNotFound(entity, field string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s %v not found", entity, field, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

// ErrInternalServerError hides the cause from the client; it is only logged.
func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, err)
	e.ErrorMsg = "internal server error"

	return e
}

var codeStatus = map[domain.Code]int{
	domain.CodeUnauthorized:         http.StatusForbidden,
	domain.CodeInvalidTransition:    http.StatusConflict,
	domain.CodeJobUnavailable:       http.StatusGone,
	domain.CodeDuplicateApplication: http.StatusConflict,
	domain.CodeCapacityViolation:    http.StatusConflict,
	domain.CodeLastJobViolation:     http.StatusConflict,
	domain.CodeInsufficientCredit:   http.StatusPaymentRequired,
	domain.CodeNotFound:             http.StatusNotFound,
	domain.CodeInvalidTimeRange:     http.StatusBadRequest,
	domain.CodeInvalidInput:         http.StatusBadRequest,
	domain.CodeJobNameTaken:         http.StatusConflict,
	domain.CodeLocationInUse:        http.StatusConflict,
}

// FromDomainErr renders a domain failure with its code and metadata. Anything
// else is an internal error.
func FromDomainErr(err error) *Err {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return ErrInternalServerError(err)
	}

	status, ok := codeStatus[derr.Code]
	if !ok {
		return ErrInternalServerError(err)
	}

	e := newErr(status, derr)
	e.Code = derr.Code
	e.Metadata = derr.Metadata

	return e
}
