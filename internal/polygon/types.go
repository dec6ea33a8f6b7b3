package polygon

import (
	"net/url"
	"time"
)

// Reference endpoints, relative to the API base URL
const (
	splitsPath    = "v3/reference/splits"
	dividendsPath = "v3/reference/dividends"
	tickersPath   = "v3/reference/tickers"
)

// Page is one page of a cursor-paginated listing
type Page[T any] struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Count     int    `json:"count"`
	Results   []T    `json:"results"`
	NextURL   string `json:"next_url"`

	// URI the page was fetched from and its undecoded body
	URI string `json:"-"`
	Raw string `json:"-"`
}

// Ticker is an entry of the tickers listing
type Ticker struct {
	Ticker          string `json:"ticker"`
	Name            string `json:"name"`
	Market          string `json:"market"`
	Locale          string `json:"locale"`
	PrimaryExchange string `json:"primary_exchange"`
	Type            string `json:"type"`
	Active          bool   `json:"active"`
	CurrencyName    string `json:"currency_name"`
	CIK             string `json:"cik"`
}

// TickerDetailsResponse wraps the single-ticker details endpoint
type TickerDetailsResponse struct {
	Status    string        `json:"status"`
	RequestID string        `json:"request_id"`
	Results   TickerDetails `json:"results"`
}

// TickerDetails is the enriched record for one ticker
type TickerDetails struct {
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Market          string  `json:"market"`
	PrimaryExchange string  `json:"primary_exchange"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	HomepageURL     string  `json:"homepage_url"`
	ListDate        string  `json:"list_date"`
	MarketCap       float64 `json:"market_cap"`
	SICCode         string  `json:"sic_code"`
	SICDescription  string  `json:"sic_description"`
}

// Split is a split event. SplitFrom is the share count before, SplitTo after.
type Split struct {
	ID            string  `json:"id"`
	Ticker        string  `json:"ticker"`
	ExecutionDate string  `json:"execution_date"`
	SplitFrom     float64 `json:"split_from"`
	SplitTo       float64 `json:"split_to"`
}

// Date parses ExecutionDate.
func (s Split) Date() (time.Time, error) {
	return time.Parse("2006-01-02", s.ExecutionDate)
}

// Dividend is a cash dividend event
type Dividend struct {
	ID              string  `json:"id"`
	Ticker          string  `json:"ticker"`
	CashAmount      float64 `json:"cash_amount"`
	Currency        string  `json:"currency"`
	DeclarationDate string  `json:"declaration_date"`
	ExDividendDate  string  `json:"ex_dividend_date"`
	PayDate         string  `json:"pay_date"`
	RecordDate      string  `json:"record_date"`
	Frequency       int     `json:"frequency"`
	DividendType    string  `json:"dividend_type"`
}

// TickersURI lists active tickers.
func TickersURI() string {
	return tickersPath + "?active=true"
}

// TickerDetailsURI addresses the details of one ticker.
func TickerDetailsURI(code string) string {
	return tickersPath + "/" + url.PathEscape(code)
}

// SplitsURI lists splits for code, or every split when code is empty.
func SplitsURI(code string) string {
	return withTicker(splitsPath, code)
}

// DividendsURI lists dividends for code, or every dividend when code is empty.
func DividendsURI(code string) string {
	return withTicker(dividendsPath, code)
}

func withTicker(path, code string) string {
	if code == "" {
		return path
	}
	return path + "?ticker=" + url.QueryEscape(code)
}
