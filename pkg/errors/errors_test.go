package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeBadCredentials, "invalid username or password")

	assert.Equal(t, ErrCodeBadCredentials, err.Code)
	assert.Equal(t, "invalid username or password", err.Message)
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, "[AUTH_001] invalid username or password", err.Error())
}

func TestErrorWithDetail(t *testing.T) {
	err := NotFound("user not found").WithDetail("username=mariana")

	assert.Equal(t, "[COMMON_005] user not found: username=mariana", err.Error())

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("ignored"))
}

func TestWithDetailDoesNotMutateReceiver(t *testing.T) {
	base := New(ErrCodeValidation, "bad age band")
	detailed := base.WithDetail("raw=abc")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "raw=abc", detailed.Detail)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "failed to load catalog")

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "never happens"))
}

func TestWrapPreservesInnerCode(t *testing.T) {
	inner := New(ErrCodeSessionSuperseded, "session replaced by newer login")
	outer := Wrap(inner, ErrCodeInternal, "heartbeat rejected")

	assert.Equal(t, ErrCodeSessionSuperseded, outer.Code)
}

func TestIsCodeTraversesChain(t *testing.T) {
	inner := New(ErrCodeSessionExpired, "session expired")
	wrapped := fmt.Errorf("middleware: %w", Wrap(inner, ErrCodeUnauthorized, "auth failed"))

	assert.True(t, IsCode(wrapped, ErrCodeSessionExpired))
	assert.True(t, IsCode(wrapped, ErrCodeUnauthorized))
	assert.False(t, IsCode(wrapped, ErrCodeBadCredentials))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeUserNotFound, "no such user")))
	assert.True(t, IsNotFound(New(ErrCodeCatalogEmpty, "catalog has no rows")))
	assert.False(t, IsNotFound(New(ErrCodeConflict, "duplicate")))
	assert.False(t, IsNotFound(nil))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(New(ErrCodeSessionSuperseded, "superseded")))
	assert.True(t, IsUnauthorized(New(ErrCodeBadCredentials, "bad password")))
	assert.False(t, IsUnauthorized(New(ErrCodeValidation, "bad input")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeInternal, GetCode(stderrors.New("plain error")))
	assert.Equal(t, ErrCodeCatalogImportError,
		GetCode(fmt.Errorf("wrapped: %w", New(ErrCodeCatalogImportError, "import failed"))))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatusForCode(ErrCodeSessionExpired))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(ErrCodeAgeBandMalformed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NO_SUCH_CODE")))
}

func TestClientServerErrorClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.False(t, IsServerError(ErrCodeBadRequest))
	assert.True(t, IsServerError(ErrCodeDatabaseError))
	assert.False(t, IsClientError(ErrCodeDatabaseError))
}
