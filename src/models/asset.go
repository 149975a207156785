package models

// Asset is a portfolio entry: either a stock position (ticker, shares,
// price) or a cash account (balance, APY as a 0..1 decimal). The is_stock
// flag decides which field group is meaningful; the other group is zeroed.
type Asset struct {
	ID           int64   `json:"id,omitempty"`
	UserID       int64   `json:"-"`
	Name         string  `json:"name"`
	IsStock      bool    `json:"isStock"`
	Ticker       string  `json:"ticker,omitempty"`
	Shares       float64 `json:"shares,omitempty"`
	CurrentPrice float64 `json:"currentPrice,omitempty"`
	Balance      float64 `json:"balance,omitempty"`
	APY          float64 `json:"apy,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// AssetValuation is one asset with its computed market value and share of
// the portfolio.
type AssetValuation struct {
	Asset
	Value             float64 `json:"value"`
	AllocationPercent float64 `json:"allocation_percent"`
}

// PortfolioValuation is the full derived view over a user's assets.
type PortfolioValuation struct {
	TotalValue float64 `json:"total_value"`
	StockValue float64 `json:"stock_value"`
	CashValue  float64 `json:"cash_value"`
	// WeightedAPY is the balance-weighted average APY over cash assets,
	// 0 when there is no cash.
	WeightedAPY    float64          `json:"weighted_apy"`
	AnnualInterest float64          `json:"annual_interest"`
	Assets         []AssetValuation `json:"assets"`
	PricesAsOf     string           `json:"prices_as_of,omitempty"`
	FailedTickers  []string         `json:"failed_tickers,omitempty"`
}
