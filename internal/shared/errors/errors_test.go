package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tutorhub/internal/shared/errors"
)

func TestAppErrorMessage(t *testing.T) {
	err := apperrors.NewValidationError("title is required")
	assert.Equal(t, "title is required", err.Error())
	assert.Equal(t, apperrors.ErrorTypeValidation, err.Type)
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)

	withCause := apperrors.NewInternalError("read back failed").WithCause(stderrors.New("timeout"))
	assert.Equal(t, "read back failed: timeout", withCause.Error())
}

func TestUnwrapExposesCause(t *testing.T) {
	err := apperrors.NewInfrastructureError("store down").WithCause(apperrors.ErrStoreUnavailable)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestWrapWritePreservesSentinelAndText(t *testing.T) {
	inner := stderrors.New("connection reset")
	err := apperrors.WrapWrite(inner)

	assert.ErrorIs(t, err, apperrors.ErrWriteFailed)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrapQueryPreservesSentinel(t *testing.T) {
	inner := stderrors.New("cursor timeout")
	err := apperrors.WrapQuery(inner)

	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
	assert.ErrorIs(t, err, inner)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, apperrors.IsNotFound(apperrors.NewNotFoundError("class")))
	assert.True(t, apperrors.IsNotFound(apperrors.ErrDocumentNotFound))
	assert.True(t, apperrors.IsValidation(apperrors.NewValidationError("bad")))
	assert.True(t, apperrors.IsValidation(apperrors.ErrInvalidArgument))
	assert.True(t, apperrors.IsDomain(apperrors.NewDomainError("rule broken")))
	assert.True(t, apperrors.IsConflict(apperrors.NewConflictError("duplicate")))

	assert.False(t, apperrors.IsNotFound(apperrors.NewValidationError("bad")))
	assert.False(t, apperrors.IsDomain(stderrors.New("plain")))
}

func TestNotFoundErrorNamesResource(t *testing.T) {
	err := apperrors.NewNotFoundError("registration")
	require.Equal(t, "registration not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode)
}

func TestBuilderChaining(t *testing.T) {
	err := apperrors.NewDomainError("over capacity").
		WithCode("CAPACITY").
		WithComponent("catalog").
		WithDetail("classId", "c1")

	assert.Equal(t, "CAPACITY", err.Code)
	assert.Equal(t, "catalog", err.Component)
	assert.Equal(t, "c1", err.Details["classId"])
}
