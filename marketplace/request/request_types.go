package request

import (
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the HTTP client timeout used when none is supplied
	DefaultTimeout = time.Second * 30

	userAgent        = "User-Agent"
	maxResponseBytes = 8 << 20
)

// Requester struct for the request client
type Requester struct {
	HTTPClient *http.Client
	Name       string
	UserAgent  string

	limiter *rate.Limiter
}

// RequesterOption is a function option for a Requester
type RequesterOption func(*Requester)

// Item is a temp item for requests
type Item struct {
	Method        string
	Path          string
	Headers       map[string]string
	Body          io.Reader
	Verbose       bool
	HTTPDebugging bool
}

// Generate defines a closure for functionality outside of the requester to
// generate a new *Item. The signed payload is built inside the closure so
// every send carries a freshly computed timestamp and signature.
type Generate func() (*Item, error)
