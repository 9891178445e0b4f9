package rates

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
)

const defaultBybitSymbol = "PAXGUSDT"

// BybitProvider quotes the per-gram rate from the Bybit spot ticker of
// a gold-backed token.
type BybitProvider struct {
	client *bybit.Client
	symbol string
}

func NewBybitProvider(client *bybit.Client, symbol string) *BybitProvider {
	if symbol == "" {
		symbol = defaultBybitSymbol
	}
	return &BybitProvider{client: client, symbol: symbol}
}

func (p *BybitProvider) PerGramRate(_ context.Context) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(p.symbol)

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, fmt.Errorf("bybit API returned empty tickers for %s", p.symbol)
	}

	ouncePrice, err := decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return perGram(ouncePrice), nil
}
