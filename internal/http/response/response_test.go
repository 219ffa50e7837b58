package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondAggregateError(c, nil, err)

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRespondAggregateErrorStatuses(t *testing.T) {
	cases := []struct {
		code   domainagg.ErrorCode
		status int
	}{
		{domainagg.CodeUnauthenticated, http.StatusUnauthorized},
		{domainagg.CodeForbidden, http.StatusForbidden},
		{domainagg.CodeNotFound, http.StatusNotFound},
		{domainagg.CodeCapacityExceeded, http.StatusConflict},
		{domainagg.CodeConflict, http.StatusConflict},
		{domainagg.CodeValidation, http.StatusUnprocessableEntity},
		{domainagg.CodeRetryable, http.StatusServiceUnavailable},
		{domainagg.CodeCollaboratorFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			rec, env := render(t, domainagg.NewError(tc.code, "op", "boom", nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, string(tc.code), env.Error.Code)
		})
	}
}

func TestRespondAggregateErrorHidesServerCauses(t *testing.T) {
	rec, env := render(t, errors.New("dial tcp 10.0.0.1:5432: refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "collaborator_failure", env.Error.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), env.Error.Message)
}

func TestRespondAggregateErrorCarriesFields(t *testing.T) {
	err := domainagg.NewValidationError("op", "invalid input", []domainagg.FieldError{{Field: "title", Message: "title cannot be blank"}})
	rec, env := render(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid input", env.Error.Message)
	require.Len(t, env.Error.Fields, 1)
	assert.Equal(t, "title", env.Error.Fields[0].Field)
}
