package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatchingByCode(t *testing.T) {
	err := ErrNoData("demo_001")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNoMatch(err))

	noMatch := ErrNoMatchingStudents("demo_001")
	assert.True(t, IsNoMatch(noMatch))
	assert.Equal(t, http.StatusNotFound, noMatch.HTTPStatus())
}

func TestWrappedDatabaseError(t *testing.T) {
	err := fmt.Errorf("%w: %v", ErrDatabaseOperation, stderrors.New("connection reset"))
	assert.True(t, stderrors.Is(err, ErrDatabaseOperation))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInternal, appErr.Code())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToGenericErrorResponse(ErrMissingColumn("quiz3"))
	assert.Equal(t, string(CodeValidationFailed), resp.Error)
	assert.Equal(t, "Missing column: quiz3", resp.Detail)
	assert.Equal(t, "quiz3", resp.Metadata["column"])

	generic := ToGenericErrorResponse(stderrors.New("raw"))
	assert.Equal(t, string(CodeInternal), generic.Error)
}

func TestWrapErrorStatus(t *testing.T) {
	cause := stderrors.New("limit")
	wrapped := WrapError(cause, CodeRateLimited, "slow down")
	assert.Equal(t, http.StatusTooManyRequests, wrapped.HTTPStatus())
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.False(t, ShouldLogError(wrapped))
	assert.True(t, ShouldLogError(ErrInternal("x")))
}
