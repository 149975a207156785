package model

import (
	"database/sql"
	"strings"
	"time"
)

// DailyQuote is one cached close-of-day (or intraday snapshot) price for a
// ticker. Quotes are cached per calendar day so a dashboard reload does not
// re-hit the upstream API.
type DailyQuote struct {
	TickerSymbol string
	Date         string // YYYY-MM-DD
	Price        float64
	Currency     string
}

func GetQuotesByTickersAndDate(db *sql.DB, tickers []string, date string) (map[string]DailyQuote, error) {
	result := make(map[string]DailyQuote)
	if len(tickers) == 0 {
		return result, nil
	}

	query := `SELECT ticker_symbol, date, price, currency FROM daily_quotes
		WHERE date = ? AND ticker_symbol IN (?` + strings.Repeat(",?", len(tickers)-1) + `)`
	args := make([]interface{}, 0, len(tickers)+1)
	args = append(args, date)
	for _, t := range tickers {
		args = append(args, t)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q DailyQuote
		if err := rows.Scan(&q.TickerSymbol, &q.Date, &q.Price, &q.Currency); err != nil {
			return nil, err
		}
		result[q.TickerSymbol] = q
	}
	return result, rows.Err()
}

func InsertOrUpdateQuote(db *sql.DB, q DailyQuote) error {
	_, err := db.Exec(`
		INSERT INTO daily_quotes (ticker_symbol, date, price, currency, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker_symbol, date) DO UPDATE SET
			price = excluded.price,
			updated_at = excluded.updated_at`,
		q.TickerSymbol, q.Date, q.Price, q.Currency, time.Now())
	return err
}
