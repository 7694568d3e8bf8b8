package mws

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/feeestimator/marketplace/request"
	"golang.org/x/text/currency"
)

// ParameterMap holds one logical request as flattened, dotted protocol keys
type ParameterMap map[string]string

// Credentials define parameters that allow for an authenticated request.
type Credentials struct {
	SellerID      string `json:"sellerID" mapstructure:"sellerid"`
	AccessKeyID   string `json:"accessKeyID" mapstructure:"accesskeyid"`
	SecretKey     string `json:"secretKey" mapstructure:"secretkey"`
	MarketplaceID string `json:"marketplaceID" mapstructure:"marketplaceid"`
}

// Endpoint is the remote host and resource path requests are signed for
type Endpoint struct {
	Host      string `json:"host" mapstructure:"host"`
	Path      string `json:"path" mapstructure:"path"`
	UserAgent string `json:"userAgent" mapstructure:"useragent"`
}

// MoneyType is an amount in a given currency
type MoneyType struct {
	Amount       decimal.Decimal
	CurrencyCode currency.Unit
}

// Points holds the loyalty points granted on a listing
type Points struct {
	PointsNumber        int64
	PointsMonetaryValue MoneyType
}

// FeesEstimateParams are the business parameters of a single fee estimate
// line item
type FeesEstimateParams struct {
	IDType            string
	IDValue           string
	IsAmazonFulfilled bool
	ListingPrice      MoneyType
	Shipping          MoneyType
	Points            Points
}

// RequestDescriptor is a signed request ready to hand to the transport
type RequestDescriptor struct {
	Method     string
	URL        string
	Headers    map[string]string
	Parameters ParameterMap
	Timestamp  string
	Identifier string
}

// FeeEstimateResult holds the fields extracted from a fee estimate response.
// Fields missing from the response are left empty.
type FeeEstimateResult struct {
	TotalFee     string `json:"totalFee"`
	SellingPrice string `json:"sellingPrice"`
	Shipping     string `json:"shipping"`
	CurrencyCode string `json:"currencyCode,omitempty"`
	Status       string `json:"status,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Identifier   string `json:"identifier,omitempty"`
}

// TotalFeeAmount parses the total fee. An absent or non numeric total is
// reported as ErrUnparseableFee rather than zero.
func (r *FeeEstimateResult) TotalFeeAmount() (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, fmt.Errorf("%w: no result", ErrUnparseableFee)
	}
	if r.TotalFee == "" {
		if r.ErrorCode != "" {
			return decimal.Zero, fmt.Errorf("%w: status %q: %s: %s", ErrUnparseableFee, r.Status, r.ErrorCode, r.ErrorMessage)
		}
		return decimal.Zero, fmt.Errorf("%w: total fee missing from response", ErrUnparseableFee)
	}
	fee, err := decimal.NewFromString(r.TotalFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrUnparseableFee, r.TotalFee, err)
	}
	return fee, nil
}

// Clock supplies the time a request is stamped with
type Clock interface {
	Now() time.Time
}

// Transport sends a generated request and returns the raw response body
type Transport interface {
	SendPayload(ctx context.Context, newRequest request.Generate) ([]byte, error)
}

// Observer receives diagnostics for every fee estimate exchange
type Observer interface {
	RequestBuilt(d *RequestDescriptor)
	ResponseReceived(d *RequestDescriptor, body []byte, result *FeeEstimateResult)
}
