// Package rates fetches advisory per-gram metal rates from exchange
// spot markets for gold-backed tokens. Rates are a UI convenience for
// prefilling transaction forms; they never gate the pipeline.
package rates

import (
	"context"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Provider returns the current suggested rate in currency units per gram.
type Provider interface {
	PerGramRate(ctx context.Context) (decimal.Decimal, error)
}

// gold tokens are quoted per troy ounce
var gramsPerTroyOunce = decimal.RequireFromString("31.1034768")

// perGram converts a per-troy-ounce quote into a per-gram rate,
// keeping two decimals of currency precision.
func perGram(ouncePrice decimal.Decimal) decimal.Decimal {
	return ouncePrice.DivRound(gramsPerTroyOunce, 2)
}

// Trend returns the simple moving average of the given rate samples
// over the given period, oldest first. Used by the rates endpoint for
// sparkline rendering.
func Trend(samples []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(samples) < period {
		return nil, errors.Errorf("not enough samples: need %d, got %d", period, len(samples))
	}

	floats := make([]float64, len(samples))
	for i, s := range samples {
		floats[i], _ = s.Float64()
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(floats)))

	result := make([]decimal.Decimal, len(out))
	for i, v := range out {
		result[i] = decimal.NewFromFloat(v).Round(2)
	}
	return result, nil
}
