package valuation

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/karatops/bullionbook/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTruncateTo3Decimals(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"drops fourth decimal", "1.2345", "1.234"},
		{"no change when short", "1.2", "1.2"},
		{"exact three decimals", "9.950", "9.95"},
		{"does not round up", "0.9999", "0.999"},
		{"zero", "0", "0"},
		{"negative floors toward minus infinity", "-1.2341", "-1.235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTo3Decimals(dec(tt.in))
			require.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestTruncateScaledToInteger(t *testing.T) {
	// truncate3(x) * 1000 must always be an integer
	for _, s := range []string{"1.23456", "0.0005", "99.99999", "10.123"} {
		scaled := TruncateTo3Decimals(dec(s)).Shift(3)
		require.True(t, scaled.Equal(scaled.Floor()), "%s scaled to %s", s, scaled)
	}
}

func TestRoundToNearest5(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"rounds up", "10093", "10095"},
		{"rounds down", "10092", "10090"},
		{"half rounds away from zero", "10092.5", "10095"},
		{"exact multiple unchanged", "500", "500"},
		{"small value", "2.4", "0"},
		{"small value up", "2.5", "5"},
		{"negative half away from zero", "-12.5", "-15"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToNearest5(dec(tt.in))
			require.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestRoundToNearest5Idempotent(t *testing.T) {
	for _, s := range []string{"10092.5", "497.5", "3.3", "-7.5", "0", "123456.78"} {
		once := RoundToNearest5(dec(s))
		twice := RoundToNearest5(once)
		require.True(t, once.Equal(twice), "round5 not idempotent for %s: %s vs %s", s, once, twice)
	}
}

func TestPureWeight(t *testing.T) {
	tests := []struct {
		name     string
		gross    string
		purity   string
		expected string
	}{
		{"standard fineness", "10", "99.5", "9.95"},
		{"full purity", "12.5", "100", "12.5"},
		{"zero purity", "10", "0", "0"},
		{"truncates not rounds", "10", "91.666", "9.166"},
		{"tiny weight", "0.001", "99.9", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PureWeight(dec(tt.gross), dec(tt.purity))
			require.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestBalance(t *testing.T) {
	require.True(t, dec("40").Equal(Balance(dec("100"), dec("60"))), "due")
	require.True(t, dec("-20").Equal(Balance(dec("100"), dec("120"))), "overpaid")
	require.True(t, Balance(dec("100"), dec("100")).IsZero(), "settled")
}

func TestFromFloatRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromFloat("amount", v)
		require.Error(t, err)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "amount", verr.Field)
	}

	d, err := FromFloat("amount", 497.5)
	require.NoError(t, err)
	require.True(t, dec("497.5").Equal(d))
}
