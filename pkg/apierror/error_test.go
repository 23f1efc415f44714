package apierror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromResponse(t *testing.T) {
	body := []byte(`{"errorCode":"errors.com.epicgames.account.account_not_found","errorMessage":"Sorry, we couldn't find an account","numericErrorCode":18007}`)

	err := FromResponse(404, body)

	assert.Equal(t, KindPlatform, err.Kind)
	assert.Equal(t, 404, err.StatusCode)
	assert.Equal(t, "errors.com.epicgames.account.account_not_found", err.Code)
	assert.Contains(t, err.Error(), "couldn't find an account")
}

func TestFromResponseNonEnvelope(t *testing.T) {
	err := FromResponse(502, []byte("<html>bad gateway</html>"))

	assert.Equal(t, KindPlatform, err.Kind)
	assert.Empty(t, err.Code)
	assert.Equal(t, "Bad Gateway", err.Message)
}

func TestKindPredicatesSeeThroughWrapping(t *testing.T) {
	transport := fmt.Errorf("fetch token: %w", Transport("", context.DeadlineExceeded))
	resolution := fmt.Errorf("gift item: %w", Resolution("item not found in shop: foo"))

	assert.True(t, IsTransport(transport))
	assert.False(t, IsResolution(transport))
	assert.True(t, errors.Is(transport, context.DeadlineExceeded))

	assert.True(t, IsResolution(resolution))
	assert.False(t, IsPlatform(resolution))
	assert.False(t, IsTransport(errors.New("plain")))
}

func TestWrapResolution(t *testing.T) {
	cause := Platform(404, "errors.com.epicgames.account.account_not_found", "")
	err := WrapResolution("recipient not found", cause)

	assert.True(t, IsResolution(err))
	assert.True(t, errors.Is(err, cause))

	already := Resolution("no bots")
	assert.Same(t, already, WrapResolution("ignored", already))
	assert.NoError(t, WrapResolution("ignored", nil))
}
