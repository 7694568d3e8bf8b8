// Package mws estimates selling fees through the MWS Products API
// GetMyFeesEstimate operation. Requests are signed with signature version 2
// (HmacSHA256 over a canonical query string).
package mws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/feeestimator/log"
	"github.com/thrasher-corp/feeestimator/marketplace/nonce"
	"github.com/thrasher-corp/feeestimator/marketplace/request"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
)

// Protocol constants
const (
	DefaultHost  = "mws.amazonservices.jp"
	ProductsPath = "/Products/2011-10-01"

	apiVersion              = "2011-10-01"
	actionGetMyFeesEstimate = "GetMyFeesEstimate"
	signatureMethod         = "HmacSHA256"
	signatureVersion        = "2"
)

// DefaultUserAgent identifies this client to the remote API
var DefaultUserAgent = "feeestimator/1.0 (Language=Go; Platform=" + runtime.GOOS + ")"

var (
	// ErrConfiguration is returned when credentials or endpoint settings are
	// missing. It is always raised before any network activity.
	ErrConfiguration = errors.New("configuration error")
	// ErrEncoding is returned when a parameter cannot be percent-encoded
	ErrEncoding = errors.New("encoding error")
	// ErrInvalidParameter is returned for unusable business parameters
	ErrInvalidParameter = errors.New("invalid fees estimate parameter")
	// ErrUnparseableFee is returned when the response carries no numeric
	// total fee
	ErrUnparseableFee = errors.New("unparseable fee")
)

// MWS is a fee estimate client bound to one set of credentials
type MWS struct {
	Name          string
	Verbose       bool
	HTTPDebugging bool

	credentials Credentials
	endpoint    Endpoint
	clock       Clock
	transport   Transport
	observer    Observer
	timeout     time.Duration
	uniqueIDs   bool
	requestRate int
}

// Option configures an MWS client
type Option func(*MWS)

// WithEndpoint overrides the default host, path and user agent
func WithEndpoint(ep Endpoint) Option {
	return func(m *MWS) {
		if ep.Host != "" {
			m.endpoint.Host = ep.Host
		}
		if ep.Path != "" {
			m.endpoint.Path = ep.Path
		}
		if ep.UserAgent != "" {
			m.endpoint.UserAgent = ep.UserAgent
		}
	}
}

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(m *MWS) {
		m.transport = t
	}
}

// WithClock replaces the clock requests are stamped with
func WithClock(c Clock) Option {
	return func(m *MWS) {
		m.clock = c
	}
}

// WithUniqueIdentifiers makes every request identifier issued by this client
// strictly greater than the previous one, even for calls landing in the same
// millisecond
func WithUniqueIdentifiers() Option {
	return func(m *MWS) {
		m.uniqueIDs = true
	}
}

// WithRequestRate caps the default transport at perSecond requests a second.
// Zero or less leaves it unthrottled.
func WithRequestRate(perSecond int) Option {
	return func(m *MWS) {
		m.requestRate = perSecond
	}
}

// WithObserver replaces the diagnostics observer
func WithObserver(o Observer) Option {
	return func(m *MWS) {
		m.observer = o
	}
}

// WithTimeout sets the HTTP client timeout of the default transport
func WithTimeout(d time.Duration) Option {
	return func(m *MWS) {
		m.timeout = d
	}
}

// WithVerbose enables request and response logging
func WithVerbose(verbose, httpDebugging bool) Option {
	return func(m *MWS) {
		m.Verbose = verbose
		m.HTTPDebugging = httpDebugging
	}
}

// New returns a client for creds. Missing credential fields are reported as
// ErrConfiguration.
func New(creds Credentials, opts ...Option) (*MWS, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	m := &MWS{
		Name:        "MWS",
		credentials: creds,
		endpoint: Endpoint{
			Host:      DefaultHost,
			Path:      ProductsPath,
			UserAgent: DefaultUserAgent,
		},
		clock:   systemClock{},
		timeout: request.DefaultTimeout,
	}
	for _, o := range opts {
		o(m)
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	if m.uniqueIDs {
		m.clock = &uniqueClock{base: m.clock}
	}
	if m.transport == nil {
		reqOpts := []request.RequesterOption{request.WithUserAgent(m.endpoint.UserAgent)}
		if m.requestRate > 0 {
			reqOpts = append(reqOpts, request.WithLimiter(request.NewRateLimit(time.Second, m.requestRate, m.requestRate)))
		}
		m.transport = request.New(m.Name, &http.Client{Timeout: m.timeout}, reqOpts...)
	}
	if m.observer == nil {
		m.observer = &logObserver{name: m.Name, verbose: m.Verbose}
	}
	return m, nil
}

// GetMyFeesEstimate signs and sends a single fee estimate request and returns
// the fields extracted from the response
func (m *MWS) GetMyFeesEstimate(ctx context.Context, params *FeesEstimateParams) (*FeeEstimateResult, error) {
	var desc *RequestDescriptor
	body, err := m.transport.SendPayload(ctx, func() (*request.Item, error) {
		d, err := BuildFeesEstimateRequest(params, &m.credentials, m.clock, &m.endpoint)
		if err != nil {
			return nil, err
		}
		desc = d
		m.observer.RequestBuilt(d)
		return &request.Item{
			Method:        d.Method,
			Path:          d.URL,
			Headers:       d.Headers,
			Verbose:       m.Verbose,
			HTTPDebugging: m.HTTPDebugging,
		}, nil
	})
	if err != nil {
		if errors.Is(err, request.ErrTransport) && len(body) > 0 {
			if res := ExtractFeeEstimate(body); res.ErrorCode != "" {
				return nil, fmt.Errorf("%w: %s: %s", err, res.ErrorCode, res.ErrorMessage)
			}
		}
		return nil, err
	}

	result := ExtractFeeEstimate(body)
	if desc != nil {
		result.Identifier = desc.Identifier
	}
	m.observer.ResponseReceived(desc, body, result)
	return result, nil
}

// GetFees returns the total fee for an FBA listing of an ASIN at price JPY
// with no shipping charge and no points. The package dimensions are validated
// but do not take part in the remote estimate.
func (m *MWS) GetFees(ctx context.Context, asin, price string, dims storagefee.Dimensions) (decimal.Decimal, error) {
	if _, err := dims.Volume(); err != nil {
		return decimal.Zero, err
	}
	params, err := NewJPYFeesEstimateParams(asin, price)
	if err != nil {
		return decimal.Zero, err
	}
	result, err := m.GetMyFeesEstimate(ctx, params)
	if err != nil {
		return decimal.Zero, err
	}
	return result.TotalFeeAmount()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// uniqueClock issues millisecond readings that never repeat
type uniqueClock struct {
	base Clock
	n    nonce.Nonce
}

func (u *uniqueClock) Now() time.Time {
	return u.n.NextMilli(u.base.Now()).Time()
}

// logObserver writes exchanges to the MWS sub logger when verbose
type logObserver struct {
	name    string
	verbose bool
}

func (l *logObserver) RequestBuilt(d *RequestDescriptor) {
	if !l.verbose {
		return
	}
	log.Debugf(log.MWSSys, "%s GetMyFeesEstimate identifier %s timestamp %s parameters: %v",
		l.name,
		d.Identifier,
		d.Timestamp,
		d.Parameters)
}

func (l *logObserver) ResponseReceived(d *RequestDescriptor, body []byte, result *FeeEstimateResult) {
	if result.Status != "" && result.Status != "Success" {
		log.Warnf(log.MWSSys, "%s fee estimate status %s: %s %s",
			l.name,
			result.Status,
			result.ErrorCode,
			result.ErrorMessage)
	}
	if !l.verbose {
		return
	}
	var id string
	if d != nil {
		id = d.Identifier
	}
	log.Debugf(log.MWSSys, "%s GetMyFeesEstimate identifier %s response: %s", l.name, id, body)
}
