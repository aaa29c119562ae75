package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuoteBasicStay(t *testing.T) {
	b, err := Quote(Input{
		Nights:             3,
		NightlyRate:        d("100"),
		CleaningFee:        d("50"),
		AddOns:             []decimal.Decimal{d("20"), d("30")},
		ServiceFeeRate:     d("0.10"),
		TouristTaxPerNight: d("2.5"),
	})
	require.NoError(t, err)

	assert.True(t, b.Subtotal.Equal(d("300")), "subtotal %s", b.Subtotal)
	assert.True(t, b.Discount.IsZero())
	assert.True(t, b.AddOnsTotal.Equal(d("50")))
	// 10% of 300 + 50 + 50
	assert.True(t, b.ServiceFee.Equal(d("40")), "service fee %s", b.ServiceFee)
	assert.True(t, b.TouristTax.Equal(d("7.5")))
	assert.True(t, b.Total.Equal(d("447.5")), "total %s", b.Total)
}

func TestQuoteSubtotalIsNightsTimesRate(t *testing.T) {
	for _, n := range []int{1, 2, 6, 7, 13, 29, 30, 45} {
		for _, rate := range []string{"0", "1", "89.99", "120.50", "1000"} {
			b, err := Quote(Input{Nights: n, NightlyRate: d(rate)})
			require.NoError(t, err)
			want := d(rate).Mul(decimal.NewFromInt(int64(n)))
			assert.True(t, b.Subtotal.Equal(want), "n=%d rate=%s got %s", n, rate, b.Subtotal)
		}
	}
}

func TestQuoteLongStayDiscount(t *testing.T) {
	base := Input{
		NightlyRate:     d("100"),
		WeeklyDiscount:  d("10"),
		MonthlyDiscount: d("25"),
	}

	tests := []struct {
		name    string
		nights  int
		percent string
	}{
		{"below weekly threshold", 6, "0"},
		{"exactly weekly", 7, "10"},
		{"between tiers", 29, "10"},
		{"exactly monthly", 30, "25"},
		{"beyond monthly", 45, "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Nights = tt.nights
			b, err := Quote(in)
			require.NoError(t, err)
			assert.True(t, b.DiscountPercent.Equal(d(tt.percent)), "got %s", b.DiscountPercent)

			wantDiscount := b.Subtotal.Mul(d(tt.percent)).Div(decimal.NewFromInt(100))
			assert.True(t, b.Discount.Equal(wantDiscount.Round(2)))
		})
	}
}

func TestQuoteMonthlyWithoutMonthlyRateFallsBackToWeekly(t *testing.T) {
	b, err := Quote(Input{Nights: 31, NightlyRate: d("50"), WeeklyDiscount: d("5")})
	require.NoError(t, err)
	assert.True(t, b.DiscountPercent.Equal(d("5")))
}

func TestQuoteCustomThresholds(t *testing.T) {
	b, err := Quote(Input{
		Nights:           14,
		NightlyRate:      d("100"),
		WeeklyDiscount:   d("5"),
		MonthlyDiscount:  d("15"),
		WeeklyThreshold:  5,
		MonthlyThreshold: 14,
	})
	require.NoError(t, err)
	assert.True(t, b.DiscountPercent.Equal(d("15")))
}

func TestQuoteDiscountReducesServiceFeeBase(t *testing.T) {
	b, err := Quote(Input{
		Nights:         7,
		NightlyRate:    d("100"),
		WeeklyDiscount: d("10"),
		ServiceFeeRate: d("0.10"),
	})
	require.NoError(t, err)
	assert.True(t, b.Discount.Equal(d("70")))
	assert.True(t, b.ServiceFee.Equal(d("63")))
	assert.True(t, b.Total.Equal(d("693")))
}

func TestQuoteRoundsHalfUpAndLinesAddUp(t *testing.T) {
	b, err := Quote(Input{
		Nights:         3,
		NightlyRate:    d("33.335"),
		ServiceFeeRate: d("0.125"),
	})
	require.NoError(t, err)

	// 100.005 -> 100.01
	assert.Equal(t, "100.01", b.Subtotal.StringFixed(2))
	// 12.500625 -> 12.50
	assert.Equal(t, "12.50", b.ServiceFee.StringFixed(2))

	sum := b.Subtotal.Sub(b.Discount).Add(b.CleaningFee).Add(b.AddOnsTotal).Add(b.ServiceFee).Add(b.TouristTax)
	assert.True(t, sum.Equal(b.Total))
}

func TestQuoteRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"zero nights", Input{Nights: 0, NightlyRate: d("10")}},
		{"negative rate", Input{Nights: 1, NightlyRate: d("-1")}},
		{"negative add-on", Input{Nights: 1, AddOns: []decimal.Decimal{d("-5")}}},
		{"fee rate above one", Input{Nights: 1, ServiceFeeRate: d("1.5")}},
		{"discount above hundred", Input{Nights: 8, WeeklyDiscount: d("120")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Quote(tt.in)
			assert.ErrorIs(t, err, ErrInvalidStay)
		})
	}
}

func TestNights(t *testing.T) {
	in := time.Date(2026, 3, 28, 15, 0, 0, 0, time.UTC)
	out := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, Nights(in, out))
	assert.Equal(t, 0, Nights(in, in))
}
