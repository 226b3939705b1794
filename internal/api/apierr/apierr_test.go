package apierr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
)

func TestStatusForKnownCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(string(domainerr.CodeAccountNotFound)))
	assert.Equal(t, http.StatusConflict, StatusFor(string(domainerr.CodeAccountFrozen)))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(string(domainerr.CodeInsufficientFunds)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(string(CodeInvalidJSON)))
}

func TestStatusForUnknownCodeDefaultsTo422NotNeverTo500(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor("SOME_UNMAPPED_CODE"))
}

func TestFromDomainErrBuildsEnvelope(t *testing.T) {
	err := domainerr.New(domainerr.CodeInsufficientFunds, "not enough balance")
	env, status, ok := FromDomainErr(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(domainerr.CodeInsufficientFunds), env.Error.Code)
	assert.Nil(t, env.Data)
}

func TestFromDomainErrSurfacesWrappedCauseNotTheWrapperCode(t *testing.T) {
	err := domainerr.Wrap(domainerr.CodeAccountRuleViolation, domainerr.CodeInsufficientFunds, "source balance too low")
	env, status, ok := FromDomainErr(err)
	require.True(t, ok)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(domainerr.CodeInsufficientFunds), env.Error.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestFromDomainErrRejectsNonDomainErrors(t *testing.T) {
	_, _, ok := FromDomainErr(assertPlainError{})
	assert.False(t, ok)
}

type assertPlainError struct{}

func (assertPlainError) Error() string { return "boom" }

func TestInternalNeverLeaksRawError(t *testing.T) {
	env := Internal()
	require.NotNil(t, env.Error)
	assert.Equal(t, string(CodeInternal), env.Error.Code)
}

func TestDataWrapsPayloadWithoutError(t *testing.T) {
	env := Data(map[string]string{"id": "acc-1"})
	assert.Nil(t, env.Error)
	assert.NotNil(t, env.Data)
}
