// Package pricing computes the price breakdown of a stay.
//
// Every amount is a decimal.Decimal. Line items are rounded to two places
// half away from zero, and Total is the sum of the rounded lines so that a
// displayed breakdown always adds up.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultWeeklyThreshold  = 7
	DefaultMonthlyThreshold = 30

	// places kept on every displayed amount
	places = 2
)

var ErrInvalidStay = errors.New("invalid stay")

var hundred = decimal.NewFromInt(100)

type Input struct {
	Nights             int
	NightlyRate        decimal.Decimal
	CleaningFee        decimal.Decimal
	AddOns             []decimal.Decimal
	ServiceFeeRate     decimal.Decimal // fraction of the pre-fee amount, 0.10 = 10%
	TouristTaxPerNight decimal.Decimal

	// Long-stay discounts are percentages (0-100) of the nightly subtotal.
	WeeklyDiscount   decimal.Decimal
	MonthlyDiscount  decimal.Decimal
	WeeklyThreshold  int
	MonthlyThreshold int
}

type Breakdown struct {
	Nights          int             `json:"nights"`
	NightlyRate     decimal.Decimal `json:"nightly_rate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	CleaningFee     decimal.Decimal `json:"cleaning_fee"`
	AddOnsTotal     decimal.Decimal `json:"addons_total"`
	ServiceFee      decimal.Decimal `json:"service_fee"`
	TouristTax      decimal.Decimal `json:"tourist_tax"`
	Total           decimal.Decimal `json:"total"`
}

// Quote prices a stay.
func Quote(in Input) (Breakdown, error) {
	if err := in.validate(); err != nil {
		return Breakdown{}, err
	}

	nights := decimal.NewFromInt(int64(in.Nights))

	subtotal := in.NightlyRate.Mul(nights)
	pct := DiscountPercent(in)
	discount := subtotal.Mul(pct).Div(hundred)

	addOns := decimal.Zero
	for _, a := range in.AddOns {
		addOns = addOns.Add(a)
	}

	feeBase := subtotal.Sub(discount).Add(in.CleaningFee).Add(addOns)
	serviceFee := feeBase.Mul(in.ServiceFeeRate)
	touristTax := in.TouristTaxPerNight.Mul(nights)

	b := Breakdown{
		Nights:          in.Nights,
		NightlyRate:     in.NightlyRate.Round(places),
		Subtotal:        subtotal.Round(places),
		DiscountPercent: pct,
		Discount:        discount.Round(places),
		CleaningFee:     in.CleaningFee.Round(places),
		AddOnsTotal:     addOns.Round(places),
		ServiceFee:      serviceFee.Round(places),
		TouristTax:      touristTax.Round(places),
	}
	b.Total = b.Subtotal.
		Sub(b.Discount).
		Add(b.CleaningFee).
		Add(b.AddOnsTotal).
		Add(b.ServiceFee).
		Add(b.TouristTax)

	return b, nil
}

// DiscountPercent returns the long-stay discount that applies to in.Nights.
// The monthly tier wins over the weekly one; they never stack.
func DiscountPercent(in Input) decimal.Decimal {
	weekly, monthly := in.thresholds()

	if in.Nights >= monthly && in.MonthlyDiscount.IsPositive() {
		return in.MonthlyDiscount
	}
	if in.Nights >= weekly && in.WeeklyDiscount.IsPositive() {
		return in.WeeklyDiscount
	}
	return decimal.Zero
}

// Nights counts calendar nights between two dates, ignoring time of day.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

func (in Input) thresholds() (int, int) {
	weekly, monthly := in.WeeklyThreshold, in.MonthlyThreshold
	if weekly <= 0 {
		weekly = DefaultWeeklyThreshold
	}
	if monthly <= 0 {
		monthly = DefaultMonthlyThreshold
	}
	return weekly, monthly
}

func (in Input) validate() error {
	if in.Nights < 1 {
		return fmt.Errorf("%w: stay must be at least one night, got %d", ErrInvalidStay, in.Nights)
	}

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"nightly rate", in.NightlyRate},
		{"cleaning fee", in.CleaningFee},
		{"tourist tax", in.TouristTaxPerNight},
		{"service fee rate", in.ServiceFeeRate},
		{"weekly discount", in.WeeklyDiscount},
		{"monthly discount", in.MonthlyDiscount},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidStay, a.name)
		}
	}
	for i, a := range in.AddOns {
		if a.IsNegative() {
			return fmt.Errorf("%w: add-on %d has a negative price", ErrInvalidStay, i)
		}
	}

	if in.ServiceFeeRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: service fee rate %s above 1", ErrInvalidStay, in.ServiceFeeRate)
	}
	if in.WeeklyDiscount.GreaterThan(hundred) || in.MonthlyDiscount.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount above 100 percent", ErrInvalidStay)
	}

	return nil
}
