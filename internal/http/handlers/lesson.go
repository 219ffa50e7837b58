package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type LessonHandler struct {
	log     *logger.Logger
	courses domainagg.CourseAggregate
}

func NewLessonHandler(log *logger.Logger, courses domainagg.CourseAggregate) *LessonHandler {
	return &LessonHandler{
		log:     log.With("handler", "LessonHandler"),
		courses: courses,
	}
}

func (h *LessonHandler) ListWeekLessons(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	lessons, err := h.courses.GetWeekLessons(c.Request.Context(), identity(c), weekID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons})
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req domainagg.LessonInput
	if !decodeStrict(c, h.log, &req) {
		return
	}
	lesson, err := h.courses.CreateLesson(c.Request.Context(), identity(c), weekID, req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	lessonID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req domainagg.LessonPatch
	if !decodeStrict(c, h.log, &req) {
		return
	}
	lesson, err := h.courses.UpdateLesson(c.Request.Context(), identity(c), lessonID, req)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	lessonID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.courses.DeleteLesson(c.Request.Context(), identity(c), lessonID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}
