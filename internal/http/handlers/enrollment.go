package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type userRef struct {
	UserID uuid.UUID `json:"user_id"`
}

// decodeUserRef reads a {"user_id": ...} body; a missing id is a validation failure.
func decodeUserRef(c *gin.Context, log *logger.Logger) (uuid.UUID, bool) {
	var req userRef
	if !decodeStrict(c, log, &req) {
		return uuid.Nil, false
	}
	if req.UserID == uuid.Nil {
		response.RespondAggregateError(c, log, domainagg.NewValidationError("http.body", "invalid input",
			[]domainagg.FieldError{{Field: "user_id", Message: "user_id is required"}}))
		return uuid.Nil, false
	}
	return req.UserID, true
}

// EnrollmentHandler serves enrollment, per-student unlocks and withdrawals.
type EnrollmentHandler struct {
	log         *logger.Logger
	enrollments domainagg.EnrollmentAggregate
}

func NewEnrollmentHandler(log *logger.Logger, enrollments domainagg.EnrollmentAggregate) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:         log.With("handler", "EnrollmentHandler"),
		enrollments: enrollments,
	}
}

func (h *EnrollmentHandler) SelfEnroll(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.SelfEnrollInCourse(c.Request.Context(), identity(c), courseID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) EnrollStudent(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	studentID, ok := decodeUserRef(c, h.log)
	if !ok {
		return
	}
	enrollment, err := h.enrollments.EnrollStudent(c.Request.Context(), identity(c), courseID, studentID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) RemoveStudent(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(c, h.log, "userId")
	if !ok {
		return
	}
	if err := h.enrollments.RemoveStudentFromCourse(c.Request.Context(), identity(c), courseID, studentID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *EnrollmentHandler) UnlockWeek(c *gin.Context) {
	weekID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	studentID, ok := decodeUserRef(c, h.log)
	if !ok {
		return
	}
	unlock, err := h.enrollments.UnlockWeekForStudent(c.Request.Context(), identity(c), weekID, studentID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"unlock": unlock})
}

func (h *EnrollmentHandler) RequestWithdrawal(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeStrict(c, h.log, &req) {
		return
	}
	wr, err := h.enrollments.RequestWithdrawal(c.Request.Context(), identity(c), courseID, req.Reason)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"withdrawal_request": wr})
}

func (h *EnrollmentHandler) ListWithdrawals(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	status := learning.WithdrawalStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	rows, err := h.enrollments.ListWithdrawalRequests(c.Request.Context(), identity(c), courseID, status)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"withdrawal_requests": rows})
}

func (h *EnrollmentHandler) ListStudents(c *gin.Context) {
	courseID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	status := learning.EnrollmentStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	rows, err := h.enrollments.ListCourseStudents(c.Request.Context(), identity(c), courseID, status)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": rows})
}

func (h *EnrollmentHandler) ReviewWithdrawal(c *gin.Context) {
	requestID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req struct {
		Approved *bool  `json:"approved"`
		Notes    string `json:"notes"`
	}
	if !decodeStrict(c, h.log, &req) {
		return
	}
	if req.Approved == nil {
		response.RespondAggregateError(c, h.log, domainagg.NewValidationError("http.body", "invalid input",
			[]domainagg.FieldError{{Field: "approved", Message: "approved is required"}}))
		return
	}
	wr, err := h.enrollments.ReviewWithdrawalRequest(c.Request.Context(), identity(c), requestID, *req.Approved, req.Notes)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"withdrawal_request": wr})
}
