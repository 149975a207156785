// backend/src/services/price_service.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"golang.org/x/net/publicsuffix"
)

const quoteUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// --- API Response Structs ---

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// --- Service Implementation ---

type priceServiceImpl struct {
	httpClient    http.Client
	isInitialized bool
	crumb         string
	mu            sync.Mutex
}

func NewPriceService() PriceService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	client := http.Client{
		Jar:     jar,
		Timeout: 20 * time.Second,
	}

	s := &priceServiceImpl{
		httpClient:    client,
		isInitialized: false,
	}

	go s.initializeYahooSession()

	return s
}

// initializeYahooSession warms the cookie jar and fetches the API crumb the
// chart endpoint requires.
func (s *priceServiceImpl) initializeYahooSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized && s.crumb != "" {
		return
	}

	logger.L.Info("Initializing Yahoo Finance session and fetching Crumb...")

	for _, url := range []string{"https://fc.yahoo.com", "https://finance.yahoo.com"} {
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("User-Agent", quoteUserAgent)
		resp, err := s.httpClient.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	req, _ := http.NewRequest("GET", "https://query1.finance.yahoo.com/v1/test/getcrumb", nil)
	req.Header.Set("User-Agent", quoteUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.L.Error("Failed to fetch crumb", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		s.crumb = string(bodyBytes)
		s.isInitialized = true
		logger.L.Info("Yahoo session initialized successfully")
	} else {
		logger.L.Warn("Failed to fetch crumb", "status", resp.Status)
	}
}

func (s *priceServiceImpl) ensureSession() {
	s.mu.Lock()
	needsInit := !s.isInitialized || s.crumb == ""
	s.mu.Unlock()

	if needsInit {
		s.initializeYahooSession()
	}
}

// sessionCrumb returns the current crumb under the lock. Callers snapshot it
// once per batch; the background init goroutine may still be writing it.
func (s *priceServiceImpl) sessionCrumb() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crumb
}

// GetQuotes resolves current prices for a set of tickers. Quotes already
// cached in the daily_quotes table for today are served from there; the rest
// go to the upstream API with a small delay between calls.
func (s *priceServiceImpl) GetQuotes(tickers []string) (QuoteResult, error) {
	result := QuoteResult{
		Prices:    make(map[string]float64),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(tickers) == 0 {
		return result, nil
	}
	s.ensureSession()
	crumb := s.sessionCrumb()

	unique := make(map[string]bool)
	var tickerList []string
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || unique[t] {
			continue
		}
		unique[t] = true
		tickerList = append(tickerList, t)
	}
	sort.Strings(tickerList)

	todayStr := time.Now().Format("2006-01-02")
	cached, err := model.GetQuotesByTickersAndDate(database.DB, tickerList, todayStr)
	if err != nil {
		logger.L.Error("Failed to get daily quotes from DB", "error", err)
	}

	for _, ticker := range tickerList {
		if q, ok := cached[ticker]; ok {
			result.Prices[ticker] = q.Price
			continue
		}

		time.Sleep(250 * time.Millisecond)
		price, currency, err := s.fetchPriceForTicker(ticker, crumb)
		if err != nil {
			logger.L.Warn("Could not get price for ticker from API", "ticker", ticker, "error", err)
			result.FailedTickers = append(result.FailedTickers, ticker)
			continue
		}
		result.Prices[ticker] = price
		if err := model.InsertOrUpdateQuote(database.DB, model.DailyQuote{
			TickerSymbol: ticker,
			Date:         todayStr,
			Price:        price,
			Currency:     currency,
		}); err != nil {
			logger.L.Warn("Failed to cache quote", "ticker", ticker, "error", err)
		}
	}
	return result, nil
}

func (s *priceServiceImpl) GetQuote(ticker string) (float64, error) {
	result, err := s.GetQuotes([]string{ticker})
	if err != nil {
		return 0, err
	}
	price, ok := result.Prices[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrQuoteUnavailable, ticker)
	}
	return price, nil
}

func (s *priceServiceImpl) fetchPriceForTicker(ticker, crumb string) (float64, string, error) {
	quoteURL := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?crumb=%s", ticker, crumb)
	req, err := http.NewRequest("GET", quoteURL, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", quoteUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to call Yahoo chart API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == 401 {
		// Crumb expired; force re-init on the next call.
		s.mu.Lock()
		s.isInitialized = false
		s.mu.Unlock()
		return 0, "", fmt.Errorf("status 401 (Unauthorized) - Crumb invalid")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("yahoo chart API returned non-OK status %d", resp.StatusCode)
	}
	var chartData yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartData); err != nil {
		return 0, "", fmt.Errorf("failed to decode Yahoo chart response: %w", err)
	}
	if chartData.Chart.Error != nil {
		return 0, "", fmt.Errorf("yahoo chart API returned an error: %v", chartData.Chart.Error)
	}
	if len(chartData.Chart.Result) == 0 || chartData.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return 0, "", fmt.Errorf("no price data found")
	}
	meta := chartData.Chart.Result[0].Meta
	return meta.RegularMarketPrice, meta.Currency, nil
}
