package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := Newf(ErrCodeDataUnavailable, "no price data for %s", "AAPL")
	assert.Equal(t, "[200] no price data for AAPL", err.Error())

	wrapped := Wrap(ErrCodeConfiguration, "bad config", fmt.Errorf("boom"))
	assert.Equal(t, "[100] bad config: boom", wrapped.Error())
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(ErrCodeInvalidRange, "only 3 trading days")
	outer := fmt.Errorf("fetch: %w", inner)

	assert.True(t, HasCode(outer, ErrCodeInvalidRange))
	assert.False(t, HasCode(outer, ErrCodeDataUnavailable))
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("plain")))

	var e *Error
	require.True(t, As(outer, &e))
	assert.Equal(t, inner, e)
}

func TestUserMessageHidesCause(t *testing.T) {
	err := Wrap(ErrCodeDataUnavailable, "no price data for TEST", fmt.Errorf("sql: connection reset"))
	assert.Equal(t, "no price data for TEST", UserMessage(fmt.Errorf("run: %w", err)))
	assert.Equal(t, "plain", UserMessage(fmt.Errorf("plain")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, ErrCodeConfiguration.IsFatal())
	assert.True(t, ErrCodeInvalidRange.IsFatal())
	assert.False(t, ErrCodeDecisionUnavailable.IsFatal())
	assert.False(t, ErrCodeInsufficientFunds.IsFatal())
}

func TestHasCodeInChain(t *testing.T) {
	inner := New(ErrCodeInvalidDecision, "confidence 11 outside 1-10")
	outer := Wrap(ErrCodeDecisionUnavailable, "degraded", fmt.Errorf("retry: %w", inner))

	assert.False(t, HasCode(outer, ErrCodeInvalidDecision))
	assert.True(t, HasCodeInChain(outer, ErrCodeInvalidDecision))
	assert.True(t, HasCodeInChain(outer, ErrCodeDecisionUnavailable))
	assert.False(t, HasCodeInChain(outer, ErrCodeConfiguration))
	assert.False(t, HasCodeInChain(nil, ErrCodeUnknown))
}
