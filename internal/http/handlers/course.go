package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// CourseHandler serves courses and their weeks.
type CourseHandler struct {
	log     *logger.Logger
	courses domainagg.CourseAggregate
}

func NewCourseHandler(log *logger.Logger, courses domainagg.CourseAggregate) *CourseHandler {
	return &CourseHandler{
		log:     log.With("handler", "CourseHandler"),
		courses: courses,
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req domainagg.CreateCourseInput
	if !decodeStrict(c, h.log, &req) {
		return
	}
	course, err := h.courses.CreateCourse(c.Request.Context(), identity(c), req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	course, err := h.courses.GetCourse(c.Request.Context(), identity(c), courseID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.courses.DeleteCourse(c.Request.Context(), identity(c), courseID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *CourseHandler) ListCourseWeeks(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	weeks, err := h.courses.GetCourseWeeks(c.Request.Context(), identity(c), courseID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"weeks": weeks})
}

func (h *CourseHandler) CreateCourseWeek(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req domainagg.WeekInput
	if !decodeStrict(c, h.log, &req) {
		return
	}
	week, err := h.courses.CreateCourseWeek(c.Request.Context(), identity(c), courseID, req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"week": week})
}

func (h *CourseHandler) UpdateCourseWeek(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req domainagg.WeekPatch
	if !decodeStrict(c, h.log, &req) {
		return
	}
	week, err := h.courses.UpdateCourseWeek(c.Request.Context(), identity(c), weekID, req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"week": week})
}

func (h *CourseHandler) DeleteCourseWeek(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.courses.DeleteCourseWeek(c.Request.Context(), identity(c), weekID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}
