package errors

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchFailure(t *testing.T) {
	err := FetchFailure(http.StatusBadGateway, "upstream down")

	assert.Equal(t, ErrorTypeFetchFailure, err.Type)
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.Equal(t, "upstream down", err.Details["body"])

	wrapped := Internal("history").WithCause(err)
	code, ok := FetchFailureStatus(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, code)

	_, ok = FetchFailureStatus(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestAbortedKeepsCause(t *testing.T) {
	err := Aborted(context.Canceled)

	assert.True(t, IsType(err, ErrorTypeAborted))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransportFailure(t *testing.T) {
	assert.True(t, IsTransportFailure(&url.Error{Op: "Get", URL: "http://x", Err: stderrors.New("refused")}))
	assert.True(t, IsTransportFailure(&net.OpError{Op: "dial", Err: stderrors.New("refused")}))
	assert.False(t, IsTransportFailure(FetchFailure(500, "")))
	assert.False(t, IsTransportFailure(nil))
}

func TestHandle(t *testing.T) {
	assert.Nil(t, Handle(nil))

	own := InvalidInput("account", "empty")
	assert.Same(t, own, Handle(own))

	assert.Equal(t, ErrorTypeTimeout, Handle(context.DeadlineExceeded).Type)
	assert.Equal(t, ErrorTypeAborted, Handle(context.Canceled).Type)
	assert.Equal(t, ErrorTypeUnavailable, Handle(&url.Error{Op: "Get", URL: "x", Err: stderrors.New("eof")}).Type)
	assert.Equal(t, ErrorTypeInternal, Handle(stderrors.New("other")).Type)
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{InvalidInput("account", "empty"), http.StatusBadRequest},
		{WalletUnavailable(), http.StatusPreconditionFailed},
		{ViewFailure("get_config_copy", "abort"), http.StatusBadGateway},
		{MalformedResponse("view", stderrors.New("eof")), http.StatusBadGateway},
		{Aborted(context.Canceled), 499},
		{Internal("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode, tt.err.Code)
	}
}
