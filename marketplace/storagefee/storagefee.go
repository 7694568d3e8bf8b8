// Package storagefee estimates the monthly fulfilment storage fee of a
// package from its dimensions.
package storagefee

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Default values for the JP fulfilment network, priced in JPY per 10cm cube
const (
	DefaultBaseRate    = "8.126"
	DefaultStorageDays = 30
	DefaultDaysInMonth = 30
)

var (
	// ErrInvalidDimensions is returned for negative or non finite dimensions
	ErrInvalidDimensions = errors.New("invalid package dimensions")
	// ErrInvalidPeriod is returned when the storage period cannot be used
	ErrInvalidPeriod = errors.New("invalid storage period")

	errInvalidBaseRate = errors.New("invalid base rate")

	cubicUnit = decimal.NewFromInt(10 * 10 * 10)
)

// Dimensions of a package in centimetres
type Dimensions struct {
	Height float64 `json:"height"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Volume returns the package volume in cubic centimetres
func (d Dimensions) Volume() (decimal.Decimal, error) {
	sides := [...]float64{d.Height, d.Length, d.Width}
	volume := decimal.NewFromInt(1)
	for i := range sides {
		if math.IsNaN(sides[i]) || math.IsInf(sides[i], 0) || sides[i] < 0 {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidDimensions, d)
		}
		volume = volume.Mul(decimal.NewFromFloat(sides[i]))
	}
	return volume, nil
}

// Calculator computes storage fees as
// baseRate * (volume / 1000cm3) * (storageDays / daysInMonth) rounded up to
// the nearest currency unit.
type Calculator struct {
	BaseRate    decimal.Decimal
	StorageDays int
	DaysInMonth int
}

// NewCalculator returns a calculator for the supplied rate and period
func NewCalculator(baseRate string, storageDays, daysInMonth int) (*Calculator, error) {
	rate, err := decimal.NewFromString(baseRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", errInvalidBaseRate, baseRate, err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: %q must not be negative", errInvalidBaseRate, baseRate)
	}
	c := &Calculator{BaseRate: rate, StorageDays: storageDays, DaysInMonth: daysInMonth}
	if err := c.validatePeriod(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a calculator using the default rate for a full month
func Default() *Calculator {
	return &Calculator{
		BaseRate:    decimal.RequireFromString(DefaultBaseRate),
		StorageDays: DefaultStorageDays,
		DaysInMonth: DefaultDaysInMonth,
	}
}

// Fee returns the storage fee for the package, rounded up
func (c *Calculator) Fee(d Dimensions) (int64, error) {
	if err := c.validatePeriod(); err != nil {
		return 0, err
	}
	volume, err := d.Volume()
	if err != nil {
		return 0, err
	}
	fee := c.BaseRate.
		Mul(volume).
		Div(cubicUnit).
		Mul(decimal.NewFromInt(int64(c.StorageDays))).
		Div(decimal.NewFromInt(int64(c.DaysInMonth)))
	return fee.Ceil().IntPart(), nil
}

func (c *Calculator) validatePeriod() error {
	if c.DaysInMonth <= 0 || c.StorageDays < 0 || c.StorageDays > c.DaysInMonth {
		return fmt.Errorf("%w: %d of %d days", ErrInvalidPeriod, c.StorageDays, c.DaysInMonth)
	}
	return nil
}

// GetStorageFee returns the storage fee for a package stored for a full
// month at the default rate
func GetStorageFee(height, length, width float64) (int64, error) {
	return Default().Fee(Dimensions{Height: height, Length: length, Width: width})
}
