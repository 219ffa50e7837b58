package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type AssignmentHandler struct {
	log     *logger.Logger
	courses domainagg.CourseAggregate
}

func NewAssignmentHandler(log *logger.Logger, courses domainagg.CourseAggregate) *AssignmentHandler {
	return &AssignmentHandler{
		log:     log.With("handler", "AssignmentHandler"),
		courses: courses,
	}
}

func (h *AssignmentHandler) ListWeekAssignments(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	assignments, err := h.courses.GetWeekAssignments(c.Request.Context(), identity(c), weekID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req domainagg.AssignmentInput
	if !decodeStrict(c, h.log, &req) {
		return
	}
	assignment, err := h.courses.CreateAssignment(c.Request.Context(), identity(c), weekID, req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req domainagg.AssignmentPatch
	if !decodeStrict(c, h.log, &req) {
		return
	}
	assignment, err := h.courses.UpdateAssignment(c.Request.Context(), identity(c), assignmentID, req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.courses.DeleteAssignment(c.Request.Context(), identity(c), assignmentID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}
