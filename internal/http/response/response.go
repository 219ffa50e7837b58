package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type APIError struct {
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Fields  []domainagg.FieldError `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAggregateError renders a coded lifecycle error. Uncoded errors are
// treated as collaborator failures; server-side causes are logged, not echoed.
func RespondAggregateError(c *gin.Context, log *logger.Logger, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeCollaboratorFailure
	}
	status := apierr.StatusForCode(string(code))

	msg := http.StatusText(status)
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) && aggErr.Message != "" && status < http.StatusInternalServerError {
		msg = aggErr.Message
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", "code", string(code), "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(code),
			Fields:  domainagg.FieldsOf(err),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
