package mws

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kat-co/vala"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Supported item identifier types
const (
	IDTypeASIN      = "ASIN"
	IDTypeSellerSKU = "SellerSKU"
)

const (
	feesEstimateSlot  = "FeesEstimateRequestList.FeesEstimateRequest.1."
	priceToEstimate   = feesEstimateSlot + "PriceToEstimateFees."
	timestampLayout   = "2006-01-02T15:04:05Z"
	apiKeyDisplaySize = 8
)

// Validate checks every credential field is set
func (c *Credentials) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: credentials not supplied", ErrConfiguration)
	}
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(strings.TrimSpace(c.SellerID), "SellerID"),
		vala.StringNotEmpty(strings.TrimSpace(c.AccessKeyID), "AccessKeyID"),
		vala.StringNotEmpty(strings.TrimSpace(c.SecretKey), "SecretKey"),
		vala.StringNotEmpty(strings.TrimSpace(c.MarketplaceID), "MarketplaceID"),
	).Check()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// String prints out basic credential info (obfuscated)
func (c *Credentials) String() string {
	obfuscated := c.AccessKeyID
	if len(obfuscated) > apiKeyDisplaySize {
		obfuscated = obfuscated[:apiKeyDisplaySize]
	}
	return fmt.Sprintf("AccessKeyID:[%s...] SellerID:[%s] MarketplaceID:[%s]",
		obfuscated,
		c.SellerID,
		c.MarketplaceID)
}

// NewJPYFeesEstimateParams returns the parameters for an FBA listing of an
// ASIN priced in JPY with no shipping charge and no points. The price is
// parsed as a decimal and sent in its canonical form, so "2500.00" and
// "2500" produce the same request and the same signature.
func NewJPYFeesEstimateParams(asin, price string) (*FeesEstimateParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return nil, fmt.Errorf("%w: price %q: %v", ErrInvalidParameter, price, err)
	}
	p := &FeesEstimateParams{
		IDType:            IDTypeASIN,
		IDValue:           asin,
		IsAmazonFulfilled: true,
		ListingPrice:      MoneyType{Amount: amount, CurrencyCode: currency.JPY},
		Shipping:          MoneyType{Amount: decimal.Zero, CurrencyCode: currency.JPY},
		Points: Points{
			PointsMonetaryValue: MoneyType{Amount: decimal.Zero, CurrencyCode: currency.JPY},
		},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the parameters can be sent to the remote API
func (p *FeesEstimateParams) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: parameters not supplied", ErrInvalidParameter)
	}
	if p.IDType != IDTypeASIN && p.IDType != IDTypeSellerSKU {
		return fmt.Errorf("%w: unsupported id type %q", ErrInvalidParameter, p.IDType)
	}
	if strings.TrimSpace(p.IDValue) == "" {
		return fmt.Errorf("%w: id value is empty", ErrInvalidParameter)
	}
	if p.Points.PointsNumber < 0 {
		return fmt.Errorf("%w: points number %d is negative", ErrInvalidParameter, p.Points.PointsNumber)
	}
	for name, m := range map[string]*MoneyType{
		"listing price":         &p.ListingPrice,
		"shipping":              &p.Shipping,
		"points monetary value": &p.Points.PointsMonetaryValue,
	} {
		if m.Amount.IsNegative() {
			return fmt.Errorf("%w: %s amount %s is negative", ErrInvalidParameter, name, m.Amount)
		}
		if m.CurrencyCode == (currency.Unit{}) {
			return fmt.Errorf("%w: %s currency code not set", ErrInvalidParameter, name)
		}
	}
	return nil
}

// parameters flattens the business parameters into the single request slot
func (p *FeesEstimateParams) parameters() ParameterMap {
	return ParameterMap{
		feesEstimateSlot + "IdType":                                 p.IDType,
		feesEstimateSlot + "IdValue":                                p.IDValue,
		feesEstimateSlot + "IsAmazonFulfilled":                      strconv.FormatBool(p.IsAmazonFulfilled),
		priceToEstimate + "ListingPrice.Amount":                     p.ListingPrice.Amount.String(),
		priceToEstimate + "ListingPrice.CurrencyCode":               p.ListingPrice.CurrencyCode.String(),
		priceToEstimate + "Shipping.Amount":                         p.Shipping.Amount.String(),
		priceToEstimate + "Shipping.CurrencyCode":                   p.Shipping.CurrencyCode.String(),
		priceToEstimate + "Points.PointsNumber":                     strconv.FormatInt(p.Points.PointsNumber, 10),
		priceToEstimate + "Points.PointsMonetaryValue.Amount":       p.Points.PointsMonetaryValue.Amount.String(),
		priceToEstimate + "Points.PointsMonetaryValue.CurrencyCode": p.Points.PointsMonetaryValue.CurrencyCode.String(),
	}
}

// BuildFeesEstimateRequest signs a GetMyFeesEstimate request for params. The
// timestamp and identifier are taken from a single clock reading.
func BuildFeesEstimateRequest(params *FeesEstimateParams, creds *Credentials, clock Clock, ep *Endpoint) (*RequestDescriptor, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if clock == nil || ep == nil || ep.Host == "" || ep.Path == "" {
		return nil, fmt.Errorf("%w: clock and endpoint host and path must be set", ErrConfiguration)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := clock.Now().UTC()
	timestamp := now.Format(timestampLayout)
	identifier := strconv.FormatInt(now.UnixMilli(), 10)

	values := params.parameters()
	for k, v := range map[string]string{
		"Action":                           actionGetMyFeesEstimate,
		"AWSAccessKeyId":                   creds.AccessKeyID,
		"SellerId":                         creds.SellerID,
		feesEstimateSlot + "MarketplaceId": creds.MarketplaceID,
		feesEstimateSlot + "Identifier":    identifier,
		"SignatureMethod":                  signatureMethod,
		"SignatureVersion":                 signatureVersion,
		"Timestamp":                        timestamp,
		"Version":                          apiVersion,
	} {
		values[k] = v
	}

	query, err := BuildCanonicalQuery(values)
	if err != nil {
		return nil, err
	}
	signature, err := Sign(http.MethodPost, ep.Host, ep.Path, query, []byte(creds.SecretKey))
	if err != nil {
		return nil, err
	}

	userAgent := ep.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &RequestDescriptor{
		Method: http.MethodPost,
		URL:    "https://" + ep.Host + ep.Path + "?" + query + "&Signature=" + signature,
		Headers: map[string]string{
			"User-Agent":   userAgent,
			"Content-Type": "application/x-www-form-urlencoded; charset=utf-8",
		},
		Parameters: values,
		Timestamp:  timestamp,
		Identifier: identifier,
	}, nil
}
