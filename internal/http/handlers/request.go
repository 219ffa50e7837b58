package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/domain/user"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

const maxBodyBytes = 1 << 20

// identity returns the caller attached by the auth middleware, or the zero
// identity, which every aggregate rejects as unauthenticated.
func identity(c *gin.Context) domainagg.Identity {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		return domainagg.Identity{}
	}
	role, _ := user.ParseRole(rd.Role)
	return domainagg.Identity{UserID: rd.UserID, Role: role}
}

// pathID parses a uuid route param; a malformed id is a validation failure.
func pathID(c *gin.Context, log *logger.Logger, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		response.RespondAggregateError(c, log, domainagg.NewValidationError("http.path", "invalid id",
			[]domainagg.FieldError{{Field: name, Message: name + " must be a uuid"}}))
		return uuid.Nil, false
	}
	return id, true
}

// decodeStrict decodes exactly one JSON value into dst, rejecting unknown
// fields and trailing data. Failures are rendered as validation errors.
func decodeStrict(c *gin.Context, log *logger.Logger, dst any) bool {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		if _, trailErr := dec.Token(); !errors.Is(trailErr, io.EOF) {
			err = errors.New("unexpected data after JSON body")
		}
	}
	if err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		response.RespondAggregateError(c, log, domainagg.NewValidationError("http.body", msg, nil))
		return false
	}
	return true
}
