package models

// WatchlistItem is a ticker the user follows, with an optional alert price.
type WatchlistItem struct {
	ID          int64    `json:"id,omitempty"`
	UserID      int64    `json:"-"`
	Ticker      string   `json:"ticker"`
	TargetPrice *float64 `json:"targetPrice,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// WatchlistQuote pairs a watched ticker with its latest known price.
type WatchlistQuote struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}
