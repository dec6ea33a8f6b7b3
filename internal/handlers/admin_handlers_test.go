package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/refsync/internal/importer"
	"github.com/epeers/refsync/internal/models"
	"github.com/epeers/refsync/internal/services"
)

type stubPrices struct{ prices []models.EodPrice }

func (s stubPrices) GetDailyPrices(ctx context.Context, source, code string, startDate, endDate time.Time) ([]models.EodPrice, error) {
	var out []models.EodPrice
	for _, p := range s.prices {
		if !p.DateEod.Before(startDate) && (endDate.IsZero() || !p.DateEod.After(endDate)) {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubSplits struct{ splits []models.Split }

func (s stubSplits) GetSplits(ctx context.Context, source, code string) ([]models.Split, error) {
	return s.splits, nil
}

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func factoryFor(cfg importer.Configuration) ImporterFactory {
	return func(dryRun bool, n importer.Notifier) (*importer.Importer, error) {
		return importer.NewImporter(cfg, importer.Dependencies{Notifier: n}, dryRun)
	}
}

func purgeConfig() importer.Configuration {
	return importer.Configuration{
		Source:        importer.SourceName,
		ImportActions: map[string]string{"Purge": "true", "Tickers": "stocks"},
	}
}

func setupRouter(h *AdminHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/import/danger", h.GetImportDanger)
	r.POST("/admin/import", h.RunImport)
	r.GET("/admin/adjusted_prices", h.GetAdjustedPrices)
	r.POST("/admin/split_factors", h.PreviewSplitFactors)
	return r
}

func serve(r *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetImportDanger(t *testing.T) {
	r := setupRouter(NewAdminHandler(factoryFor(purgeConfig()), nil))

	w := serve(r, http.MethodGet, "/admin/import/danger", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.DangerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsDangerous)
	assert.Equal(t, []string{importer.DangerMessage}, resp.Messages)

	w = serve(r, http.MethodGet, "/admin/import/danger?dry_run=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = models.DangerResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsDangerous)
}

func TestRunImport_RequiresConfirmation(t *testing.T) {
	r := setupRouter(NewAdminHandler(factoryFor(purgeConfig()), nil))

	w := serve(r, http.MethodPost, "/admin/import", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmation_required", resp.Error)
	assert.Equal(t, importer.DangerMessage, resp.Message)
}

func TestRunImport_DryRun(t *testing.T) {
	r := setupRouter(NewAdminHandler(factoryFor(purgeConfig()), nil))

	w := serve(r, http.MethodPost, "/admin/import?dry_run=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.DryRun)
	assert.Zero(t, resp.Stragglers)

	var msgs []string
	for _, e := range resp.Events {
		msgs = append(msgs, e.Message)
		assert.Empty(t, e.Error)
	}
	assert.Contains(t, msgs, "Purge (dry run)")
	assert.Contains(t, msgs, "Tickers (dry run)")
}

func TestRunImport_BadConfiguration(t *testing.T) {
	cfg := purgeConfig()
	cfg.Source = "eodhd.com"
	r := setupRouter(NewAdminHandler(factoryFor(cfg), nil))

	w := serve(r, http.MethodPost, "/admin/import?dry_run=true", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_configuration", resp.Error)
	assert.Contains(t, resp.Message, "eodhd.com")
}

func TestGetAdjustedPrices(t *testing.T) {
	prices := stubPrices{prices: []models.EodPrice{
		{Code: "TST", DateEod: day("2022-12-30"), Open: 10, High: 12, Low: 9, Close: 11, Volume: 600},
		{Code: "TST", DateEod: day("2023-01-03"), Open: 5, High: 6, Low: 4, Close: 5.5, Volume: 1200},
	}}
	splits := stubSplits{splits: []models.Split{
		{Code: "TST", SplitDate: day("2023-01-01"), Before: 1, After: 2},
	}}
	svc := services.NewAdjustmentService(nil, prices, splits, importer.SourceName)
	r := setupRouter(NewAdminHandler(factoryFor(purgeConfig()), svc))

	w := serve(r, http.MethodGet, "/admin/adjusted_prices?ticker=TST&start_date=2022-12-01&end_date=2023-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.GetAdjustedPricesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Equal(t, 2, resp.DataPoints)
	assert.Equal(t, "2022-12-30", resp.Prices[0].Date)
	assert.InDelta(t, 2.0, resp.Prices[0].Factor, 1e-9)
	assert.InDelta(t, 22.0, resp.Prices[0].Close, 1e-9)
	assert.Equal(t, int64(300), resp.Prices[0].Volume)
	assert.InDelta(t, 1.0, resp.Prices[1].Factor, 1e-9)
	assert.InDelta(t, 5.5, resp.Prices[1].Close, 1e-9)
	assert.Empty(t, resp.Warnings)
}

func TestGetAdjustedPrices_BadRequest(t *testing.T) {
	svc := services.NewAdjustmentService(nil, stubPrices{}, stubSplits{}, importer.SourceName)
	r := setupRouter(NewAdminHandler(factoryFor(purgeConfig()), svc))

	tests := []struct {
		name  string
		query string
	}{
		{"missing ticker", "start_date=2023-01-01&end_date=2023-02-01"},
		{"bad start", "ticker=TST&start_date=01/01/2023&end_date=2023-02-01"},
		{"bad end", "ticker=TST&start_date=2023-01-01&end_date=tomorrow"},
		{"reversed", "ticker=TST&start_date=2023-02-01&end_date=2023-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/admin/adjusted_prices?"+tt.query, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestPreviewSplitFactors(t *testing.T) {
	r := setupRouter(NewAdminHandler(factoryFor(purgeConfig()), nil))

	body := []byte(`{"splits":[
		{"date":"2023-06-01","ratio":"3/1"},
		{"date":"2023-01-01T00:00:00Z","ratio":"2:1"},
		{"date":"2023-09-01","ratio":"garbage"}
	]}`)
	w := serve(r, http.MethodPost, "/admin/split_factors", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SplitFactorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Factors, 3)
	assert.True(t, day("2023-01-01").Equal(resp.Factors[0].Date.Time))
	assert.InDelta(t, 6.0, resp.Factors[0].Factor, 1e-9)
	assert.InDelta(t, 3.0, resp.Factors[1].Factor, 1e-9)
	assert.InDelta(t, 1.0, resp.Factors[2].Factor, 1e-9)
	require.Len(t, resp.Warnings, 1)
	assert.True(t, strings.HasPrefix(resp.Warnings[0], string(models.WarnMalformedSplitText)))

	w = serve(r, http.MethodPost, "/admin/split_factors", []byte(`{"splits":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
