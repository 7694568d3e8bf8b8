package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sm := http.NewServeMux()
	sm.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<Response>ok</Response>")
	})
	sm.HandleFunc("/error", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "<ErrorResponse><Error><Code>InvalidParameterValue</Code></Error></ErrorResponse>")
	})
	s := httptest.NewServer(sm)
	t.Cleanup(s.Close)
	return s
}

func TestSendPayload(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	r := New("test", s.Client(), WithUserAgent("fee tool/1.0"))

	var gotHeaders http.Header
	r.HTTPClient.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		gotHeaders = req.Header.Clone()
		return http.DefaultTransport.RoundTrip(req)
	})

	body, err := r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{
			Method:  http.MethodPost,
			Path:    s.URL + "/ok?A=1&B=2",
			Headers: map[string]string{"Content-Type": "fee tool/1.0"},
			Verbose: true,
		}, nil
	})
	require.NoError(t, err, "SendPayload must not error")
	assert.Equal(t, "<Response>ok</Response>", string(body), "SendPayload should return the raw body")
	assert.Equal(t, "fee tool/1.0", gotHeaders.Get("User-Agent"), "Requester user agent should be applied")
	assert.Equal(t, "fee tool/1.0", gotHeaders.Get("Content-Type"), "Item headers should be applied")
}

func TestSendPayloadStatusError(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	r := New("test", s.Client())

	body, err := r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{Method: http.MethodPost, Path: s.URL + "/error"}, nil
	})
	assert.ErrorIs(t, err, ErrTransport, "Unsuccessful status should be a transport error")
	assert.Contains(t, string(body), "InvalidParameterValue", "Body should be returned with a status error")
}

func TestSendPayloadNetworkError(t *testing.T) {
	t.Parallel()
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	r := New("test", nil)
	_, err := r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{Method: http.MethodPost, Path: url + "/gone"}, nil
	})
	assert.ErrorIs(t, err, ErrTransport, "Connection failure should be a transport error")
}

func TestSendPayloadValidation(t *testing.T) {
	t.Parallel()
	var r *Requester
	_, err := r.SendPayload(context.Background(), nil)
	assert.ErrorIs(t, err, errRequestSystemIsNil, "Nil requester should error")

	r = New("test", nil)
	assert.Equal(t, DefaultTimeout, r.HTTPClient.Timeout, "Nil client should be replaced with a default client")

	_, err = r.SendPayload(context.Background(), nil)
	assert.ErrorIs(t, err, errRequestFunctionIsNil, "Nil generator should error")

	_, err = r.SendPayload(context.Background(), func() (*Item, error) { return nil, nil })
	assert.ErrorIs(t, err, errRequestItemNil, "Nil item should error")

	_, err = r.SendPayload(context.Background(), func() (*Item, error) { return &Item{}, nil })
	assert.ErrorIs(t, err, errInvalidPath, "Empty path should error")

	errGen := errors.New("cannot build")
	_, err = r.SendPayload(context.Background(), func() (*Item, error) { return nil, errGen })
	assert.ErrorIs(t, err, errGen, "Generator errors should be returned as is")
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
