package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/thrasher-corp/feeestimator/log"
)

var (
	// ErrTransport is returned when the request could not be completed or the
	// remote end answered with an unsuccessful status code
	ErrTransport = errors.New("transport error")

	errRequestSystemIsNil   = errors.New("request system is nil")
	errRequestFunctionIsNil = errors.New("request function is nil")
	errRequestItemNil       = errors.New("request item is nil")
	errInvalidPath          = errors.New("invalid path")
	errResponseTooLarge     = errors.New("response body exceeds size limit")
)

// New returns a new Requester
func New(name string, httpRequester *http.Client, opts ...RequesterOption) *Requester {
	if httpRequester == nil {
		httpRequester = &http.Client{Timeout: DefaultTimeout}
	}
	r := &Requester{
		HTTPClient: httpRequester,
		Name:       name,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// WithUserAgent sets the User-Agent header sent when the item does not set
// one itself
func WithUserAgent(ua string) RequesterOption {
	return func(r *Requester) {
		r.UserAgent = ua
	}
}

// SendPayload sends the generated request and returns the raw response body.
// On an unsuccessful status code the body is returned alongside the error so
// callers can inspect remote error details.
func (r *Requester) SendPayload(ctx context.Context, newRequest Generate) ([]byte, error) {
	if r == nil {
		return nil, errRequestSystemIsNil
	}
	if newRequest == nil {
		return nil, errRequestFunctionIsNil
	}

	if err := r.waitForLimit(ctx); err != nil {
		return nil, err
	}

	p, err := newRequest()
	if err != nil {
		return nil, err
	}

	req, err := p.validateRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	if p.Verbose {
		log.Debugf(log.RequestSys, "%s request path: %s", r.Name, p.Path)
		for k, d := range req.Header {
			log.Debugf(log.RequestSys, "%s request header [%s]: %s", r.Name, k, d)
		}
		log.Debugf(log.RequestSys, "%s request type: %s", r.Name, p.Method)
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, r.Name, err)
	}
	defer resp.Body.Close()

	contents, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, r.Name, err)
	}
	if len(contents) > maxResponseBytes {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, r.Name, errResponseTooLarge)
	}

	if p.HTTPDebugging {
		dump, err := httputil.DumpResponse(resp, false)
		if err != nil {
			log.Errorf(log.RequestSys, "DumpResponse invalid response: %v:", err)
		}
		log.Debugf(log.RequestSys, "DumpResponse Headers (%v):\n%s", p.Path, dump)
		log.Debugf(log.RequestSys, "DumpResponse Body (%v):\n %s", p.Path, string(contents))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return contents, fmt.Errorf("%w: %s unsuccessful HTTP status code: %d",
			ErrTransport,
			r.Name,
			resp.StatusCode)
	}

	if p.Verbose {
		log.Debugf(log.RequestSys,
			"HTTP status: %s, Code: %v",
			resp.Status,
			resp.StatusCode)
		if !p.HTTPDebugging {
			log.Debugf(log.RequestSys,
				"%s raw response: %s",
				r.Name,
				string(contents))
		}
	}
	return contents, nil
}

// validateRequest validates the requester item fields
func (i *Item) validateRequest(ctx context.Context, r *Requester) (*http.Request, error) {
	if r == nil {
		return nil, errRequestSystemIsNil
	}
	if i == nil {
		return nil, errRequestItemNil
	}
	if i.Path == "" {
		return nil, errInvalidPath
	}

	req, err := http.NewRequestWithContext(ctx, i.Method, i.Path, i.Body)
	if err != nil {
		return nil, err
	}

	if i.HTTPDebugging {
		// Err not evaluated due to validation check above
		dump, _ := httputil.DumpRequestOut(req, true)
		log.Debugf(log.RequestSys, "DumpRequest:\n%s", dump)
	}

	for k, v := range i.Headers {
		req.Header.Add(k, v)
	}

	if r.UserAgent != "" && req.Header.Get(userAgent) == "" {
		req.Header.Add(userAgent, r.UserAgent)
	}

	return req, nil
}
