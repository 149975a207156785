// backend/src/services/portfolio_service.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"github.com/username/tradelens/backend/src/models"
)

type portfolioServiceImpl struct {
	priceService PriceService
}

func NewPortfolioService(priceService PriceService) PortfolioService {
	return &portfolioServiceImpl{priceService: priceService}
}

// GetValuation computes market value, allocation percentages and the
// balance-weighted APY over the user's assets. Sums run on decimals so
// account balances do not accumulate float drift; the derived percentages
// are plain floats since they are display-only.
func (s *portfolioServiceImpl) GetValuation(userID int64, refreshPrices bool) (models.PortfolioValuation, error) {
	assets, err := model.GetAssetsByUser(database.DB, userID)
	if err != nil {
		return models.PortfolioValuation{}, fmt.Errorf("loading assets for user %d: %w", userID, err)
	}

	valuation := models.PortfolioValuation{Assets: []models.AssetValuation{}}

	if refreshPrices {
		var tickers []string
		for _, a := range assets {
			if a.IsStock && a.Ticker != "" {
				tickers = append(tickers, a.Ticker)
			}
		}
		if len(tickers) > 0 {
			quotes, err := s.priceService.GetQuotes(tickers)
			if err != nil {
				logger.L.Warn("Quote refresh failed, falling back to stored prices", "userID", userID, "error", err)
			} else {
				valuation.PricesAsOf = quotes.Timestamp
				valuation.FailedTickers = quotes.FailedTickers
				for i := range assets {
					if price, ok := quotes.Prices[assets[i].Ticker]; ok && assets[i].IsStock {
						assets[i].CurrentPrice = price
						if err := model.UpdateAssetPrice(database.DB, userID, assets[i].Ticker, price); err != nil {
							logger.L.Warn("Failed to persist refreshed price", "userID", userID, "ticker", assets[i].Ticker, "error", err)
						}
					}
				}
			}
		}
	}

	stockValue := decimal.Zero
	cashValue := decimal.Zero
	weightedAPYNumerator := decimal.Zero
	values := make([]decimal.Decimal, len(assets))

	for i, a := range assets {
		var v decimal.Decimal
		if a.IsStock {
			v = decimal.NewFromFloat(a.Shares).Mul(decimal.NewFromFloat(a.CurrentPrice))
			stockValue = stockValue.Add(v)
		} else {
			v = decimal.NewFromFloat(a.Balance)
			cashValue = cashValue.Add(v)
			weightedAPYNumerator = weightedAPYNumerator.Add(v.Mul(decimal.NewFromFloat(a.APY)))
		}
		values[i] = v
	}

	total := stockValue.Add(cashValue)
	valuation.TotalValue, _ = total.Round(2).Float64()
	valuation.StockValue, _ = stockValue.Round(2).Float64()
	valuation.CashValue, _ = cashValue.Round(2).Float64()
	valuation.AnnualInterest, _ = weightedAPYNumerator.Round(2).Float64()

	if cashValue.IsPositive() {
		apy, _ := weightedAPYNumerator.Div(cashValue).Float64()
		valuation.WeightedAPY = apy
	}

	for i, a := range assets {
		av := models.AssetValuation{Asset: a}
		av.Value, _ = values[i].Round(2).Float64()
		if total.IsPositive() {
			pct, _ := values[i].Div(total).Mul(decimal.NewFromInt(100)).Float64()
			av.AllocationPercent = pct
		}
		valuation.Assets = append(valuation.Assets, av)
	}

	return valuation, nil
}
