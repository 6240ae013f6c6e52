package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/joseph-ayodele/orders-intake/constants"
	"github.com/joseph-ayodele/orders-intake/internal/common"
)

type errorEnvelope struct {
	Status  constants.ResponseStatus `json:"status"`
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
}

// classify maps an error kind to the HTTP status and envelope code shown to clients.
// Both upstream kinds surface as one category.
func classify(err error) (int, string) {
	switch common.KindOf(err) {
	case common.ErrInvalidInput:
		return http.StatusBadRequest, constants.CodeInvalidInput
	case common.ErrUpstream, common.ErrUpstreamUnavailable:
		return http.StatusBadGateway, constants.CodeUpstreamFailure
	case common.ErrPersistence:
		return http.StatusInternalServerError, constants.CodePersistence
	default:
		return http.StatusInternalServerError, constants.CodeInternal
	}
}

func (s *Server) writeError(c *gin.Context, op string, err error) {
	status, code := classify(err)

	message := "Internal server error"
	var appErr *common.AppError
	if code != constants.CodeInternal && errors.As(err, &appErr) {
		message = appErr.Message
	}

	log := s.logger.With("op", op, "request_id", common.RequestIDFromContext(c.Request.Context()), "code", code)
	if appErr != nil {
		log = log.With("kind", appErr.Code, "upstream_status", appErr.Status)
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Warn("request rejected", "error", err)
	}

	c.AbortWithStatusJSON(status, errorEnvelope{
		Status:  constants.StatusError,
		Code:    code,
		Message: message,
	})
}

// bindError turns a gin binding failure into an InvalidInput error with a
// message that names JSON fields rather than Go types.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.InvalidInputError("Malformed request body", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return common.InvalidInputError(strings.Join(msgs, "; "), err)
}

var registerOnce sync.Once

// registerJSONFieldNames makes validation errors report json tag names.
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
