package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// RosterHandler serves instructor membership and role administration.
type RosterHandler struct {
	log    *logger.Logger
	roster domainagg.RosterAggregate
}

func NewRosterHandler(log *logger.Logger, roster domainagg.RosterAggregate) *RosterHandler {
	return &RosterHandler{
		log:    log.With("handler", "RosterHandler"),
		roster: roster,
	}
}

func (h *RosterHandler) AddInstructor(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	userID, ok := decodeUserRef(c, h.log)
	if !ok {
		return
	}
	row, err := h.roster.AddInstructor(c.Request.Context(), identity(c), courseID, userID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"instructor": row})
}

func (h *RosterHandler) ListInstructors(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	rows, err := h.roster.ListInstructors(c.Request.Context(), identity(c), courseID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"instructors": rows})
}

func (h *RosterHandler) RemoveInstructor(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, h.log, "userId")
	if !ok {
		return
	}
	if err := h.roster.RemoveInstructor(c.Request.Context(), identity(c), courseID, userID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *RosterHandler) UpdateUserRole(c *gin.Context) {
	targetID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeStrict(c, h.log, &req) {
		return
	}
	u, err := h.roster.UpdateUserRole(c.Request.Context(), identity(c), targetID, req.Role)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
