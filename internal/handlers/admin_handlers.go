package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/refsync/internal/importer"
	"github.com/epeers/refsync/internal/models"
	"github.com/epeers/refsync/internal/services"
	"github.com/epeers/refsync/internal/splits"
)

// ImporterFactory builds an importer from the current import configuration
type ImporterFactory func(dryRun bool, notifier importer.Notifier) (*importer.Importer, error)

// AdminHandler handles admin endpoints
type AdminHandler struct {
	newImporter ImporterFactory
	adjustSvc   *services.AdjustmentService

	mu      sync.Mutex
	running bool
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(newImporter ImporterFactory, adjustSvc *services.AdjustmentService) *AdminHandler {
	return &AdminHandler{
		newImporter: newImporter,
		adjustSvc:   adjustSvc,
	}
}

func writeImporterError(c *gin.Context, err error) {
	var cfgErr *importer.ConfigurationError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_configuration",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}

// GetImportDanger handles GET /admin/import/danger
// @Summary Check whether the configured import is destructive
// @Description Reports whether running the import would purge existing data and the confirmation message to show
// @Tags admin
// @Produce json
// @Param dry_run query bool false "Evaluate as a dry run"
// @Success 200 {object} models.DangerResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/import/danger [get]
func (h *AdminHandler) GetImportDanger(c *gin.Context) {
	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))

	imp, err := h.newImporter(dryRun, importer.LogNotifier{})
	if err != nil {
		writeImporterError(c, err)
		return
	}

	dangerous, msgs := imp.ContainsDanger()
	c.JSON(http.StatusOK, models.DangerResponse{IsDangerous: dangerous, Messages: msgs})
}

// RunImport handles POST /admin/import
// @Summary Run the configured import
// @Description Runs purge, ticker, split, dividend and flat file stages. A purge must be confirmed with confirm=true.
// @Tags admin
// @Produce json
// @Param dry_run query bool false "Report stages without changing anything"
// @Param confirm query bool false "Consent to a destructive import"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/import [post]
func (h *AdminHandler) RunImport(c *gin.Context) {
	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))
	confirm, _ := strconv.ParseBool(c.Query("confirm"))

	rec := &importer.Recorder{}
	imp, err := h.newImporter(dryRun, importer.Notifiers(importer.LogNotifier{}, rec))
	if err != nil {
		writeImporterError(c, err)
		return
	}

	if dangerous, msgs := imp.ContainsDanger(); dangerous && !confirm {
		msg := "confirmation required"
		if len(msgs) > 0 {
			msg = msgs[0]
		}
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "confirmation_required",
			Message: msg,
		})
		return
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "import_in_progress",
			Message: "an import is already running",
		})
		return
	}
	h.running = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	log.WithFields(log.Fields{"dry_run": dryRun, "process_id": imp.ProcessID()}).Info("import requested")
	elapsed, err := imp.Run(c.Request.Context())
	if err != nil {
		writeImporterError(c, err)
		return
	}
	if !dryRun && h.adjustSvc != nil {
		h.adjustSvc.ClearCache()
	}

	events := rec.Events()
	resp := models.ImportResponse{
		DryRun:     dryRun,
		ElapsedMS:  elapsed.Milliseconds(),
		Stragglers: imp.Retried(),
		Events:     make([]models.ImportEvent, 0, len(events)),
	}
	for _, e := range events {
		ev := models.ImportEvent{Message: e.Message, Scope: e.Scope}
		if e.Err != nil {
			ev.Error = e.Err.Error()
		}
		resp.Events = append(resp.Events, ev)
	}
	c.JSON(http.StatusOK, resp)
}

// GetAdjustedPrices handles GET /admin/adjusted_prices
// @Summary Get split-adjusted daily prices
// @Description Returns stored end-of-day prices for a ticker scaled to the most recent split
// @Tags admin
// @Produce json
// @Param ticker query string true "Ticker symbol"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} models.GetAdjustedPricesResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/adjusted_prices [get]
func (h *AdminHandler) GetAdjustedPrices(c *gin.Context) {
	var req models.GetAdjustedPricesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	startDate, err := time.Parse(models.DateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid start_date format, expected YYYY-MM-DD",
		})
		return
	}
	endDate, err := time.Parse(models.DateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid end_date format, expected YYYY-MM-DD",
		})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "end_date must not be before start_date",
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	prices, err := h.adjustSvc.GetAdjustedPrices(ctx, req.Ticker, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	resp := models.GetAdjustedPricesResponse{
		Ticker:     req.Ticker,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		DataPoints: len(prices),
		Prices:     make([]models.AdjustedPriceDTO, 0, len(prices)),
		Warnings:   wc.Messages(),
	}
	for _, p := range prices {
		resp.Prices = append(resp.Prices, models.AdjustedPriceDTO{
			Date:   p.DateEod.Format(models.DateLayout),
			Open:   p.AdjustedOpen(),
			High:   p.AdjustedHigh(),
			Low:    p.AdjustedLow(),
			Close:  p.AdjustedClose(),
			Volume: p.AdjustedVolume(),
			Factor: p.Factor,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// PreviewSplitFactors handles POST /admin/split_factors
// @Summary Compute cumulative split factors
// @Description Parses ratio text ("2/1" or "3:2") for each split and returns the cumulative factor per split date
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.SplitFactorsRequest true "Splits to evaluate"
// @Success 200 {object} models.SplitFactorsResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/split_factors [post]
func (h *AdminHandler) PreviewSplitFactors(c *gin.Context) {
	var req models.SplitFactorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	events := make([]models.Split, 0, len(req.Splits))
	var warnings []string
	for _, s := range req.Splits {
		if _, _, ok := splits.ParseRatio(s.Ratio); !ok {
			warnings = append(warnings, string(models.WarnMalformedSplitText)+": could not parse "+strconv.Quote(s.Ratio))
		}
		events = append(events, splits.FromText(importer.SourceName, "", s.Date.Time, s.Ratio))
	}

	factors := splits.CumulativeFactors(events)
	resp := models.SplitFactorsResponse{
		Factors:  make([]models.SplitFactorDTO, 0, len(factors)),
		Warnings: warnings,
	}
	for _, f := range factors {
		resp.Factors = append(resp.Factors, models.SplitFactorDTO{
			Date:   models.FlexibleDate{Time: f.Date},
			Factor: f.Value,
		})
	}
	c.JSON(http.StatusOK, resp)
}
