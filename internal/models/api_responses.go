package models

// ErrorResponse is the body returned for every failed admin request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ImportEvent is one notification emitted while an import runs
type ImportEvent struct {
	Message string `json:"message"`
	Scope   string `json:"scope,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DangerResponse reports whether running the configured import needs consent
type DangerResponse struct {
	IsDangerous bool     `json:"is_dangerous"`
	Messages    []string `json:"messages"`
}

// ImportResponse summarizes a completed import run
type ImportResponse struct {
	DryRun     bool          `json:"dry_run"`
	ElapsedMS  int64         `json:"elapsed_ms"`
	Stragglers int           `json:"stragglers"`
	Events     []ImportEvent `json:"events"`
}

// GetAdjustedPricesRequest binds the query for GET /admin/adjusted_prices
type GetAdjustedPricesRequest struct {
	Ticker    string `form:"ticker" binding:"required"`
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// AdjustedPriceDTO is one split-adjusted bar
type AdjustedPriceDTO struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	Factor float64 `json:"factor"`
}

// GetAdjustedPricesResponse is returned by GET /admin/adjusted_prices
type GetAdjustedPricesResponse struct {
	Ticker     string             `json:"ticker"`
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	DataPoints int                `json:"data_points"`
	Prices     []AdjustedPriceDTO `json:"prices"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// SplitRatioRequest is one split given as provider ratio text, e.g. "2/1" or "3:2"
type SplitRatioRequest struct {
	Date  FlexibleDate `json:"date" binding:"required"`
	Ratio string       `json:"ratio" binding:"required"`
}

// SplitFactorsRequest is the body for POST /admin/split_factors
type SplitFactorsRequest struct {
	Splits []SplitRatioRequest `json:"splits" binding:"required"`
}

// SplitFactorDTO pairs a split date with its cumulative factor
type SplitFactorDTO struct {
	Date   FlexibleDate `json:"date"`
	Factor float64      `json:"factor"`
}

// SplitFactorsResponse is returned by POST /admin/split_factors
type SplitFactorsResponse struct {
	Factors  []SplitFactorDTO `json:"factors"`
	Warnings []string         `json:"warnings,omitempty"`
}
