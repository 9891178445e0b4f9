package rates

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

const defaultBinanceSymbol = "PAXGUSDT"

// BinanceProvider quotes the per-gram rate from the Binance spot price
// of a gold-backed token. Uses the public price endpoint, no API keys
// required.
type BinanceProvider struct {
	client *binance.Client
	symbol string
}

func NewBinanceProvider(client *binance.Client, symbol string) *BinanceProvider {
	if symbol == "" {
		symbol = defaultBinanceSymbol
	}
	return &BinanceProvider{client: client, symbol: symbol}
}

func (p *BinanceProvider) PerGramRate(ctx context.Context) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(p.symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty prices for %s", p.symbol)
	}

	ouncePrice, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return perGram(ouncePrice), nil
}
